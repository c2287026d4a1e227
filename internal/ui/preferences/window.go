package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window    fyne.Window
	settings  Settings
	onSave    func(Settings)
	onCancel  func()
	minMs     *widget.Entry
	maxMs     *widget.Entry
	pauseSec  *widget.Entry
	restrict  *widget.Check
	appID     *widget.Entry
	autostart *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("ClickMate Settings")

	minMs := widget.NewEntry()
	maxMs := widget.NewEntry()
	pauseSec := widget.NewEntry()
	appID := widget.NewEntry()
	appID.SetPlaceHolder("com.example.app")

	minMs.SetText(fmt.Sprintf("%d", settings.MinInterval.Milliseconds()))
	maxMs.SetText(fmt.Sprintf("%d", settings.MaxInterval.Milliseconds()))
	pauseSec.SetText(strconv.FormatFloat(settings.PauseAfterInput.Seconds(), 'f', -1, 64))
	appID.SetText(settings.AllowedAppID)

	restrict := widget.NewCheck("Only click inside one application", nil)
	restrict.SetChecked(settings.RestrictToApp)

	autostart := widget.NewCheck("Start at login", nil)
	autostart.SetChecked(settings.Autostart)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Click interval", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Minimum"), minMs, widget.NewLabel("ms")),
		container.NewHBox(widget.NewLabel("Maximum"), maxMs, widget.NewLabel("ms")),
		widget.NewLabelWithStyle("Safety", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Pause after real input"), pauseSec, widget.NewLabel("sec")),
		restrict,
		container.NewHBox(widget.NewLabel("Application id"), appID),
		autostart,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(420, 360))

	prefs := &Window{
		window:    window,
		settings:  settings,
		onSave:    onSave,
		minMs:     minMs,
		maxMs:     maxMs,
		pauseSec:  pauseSec,
		restrict:  restrict,
		appID:     appID,
		autostart: autostart,
	}

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		window.Hide()
		if prefs.onCancel != nil {
			prefs.onCancel()
		}
	}

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.minMs.SetText(fmt.Sprintf("%d", settings.MinInterval.Milliseconds()))
	prefs.maxMs.SetText(fmt.Sprintf("%d", settings.MaxInterval.Milliseconds()))
	prefs.pauseSec.SetText(strconv.FormatFloat(settings.PauseAfterInput.Seconds(), 'f', -1, 64))
	prefs.restrict.SetChecked(settings.RestrictToApp)
	prefs.appID.SetText(settings.AllowedAppID)
	prefs.autostart.SetChecked(settings.Autostart)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if millis, ok := parsePositiveInt(prefs.minMs.Text); ok {
		settings.MinInterval = time.Duration(millis) * time.Millisecond
	}
	if millis, ok := parsePositiveInt(prefs.maxMs.Text); ok {
		settings.MaxInterval = time.Duration(millis) * time.Millisecond
	}
	if settings.MaxInterval < settings.MinInterval {
		settings.MaxInterval = settings.MinInterval
	}
	if seconds, ok := parsePositiveFloat(prefs.pauseSec.Text); ok {
		settings.PauseAfterInput = time.Duration(seconds * float64(time.Second))
	}

	settings.RestrictToApp = prefs.restrict.Checked
	settings.AllowedAppID = strings.TrimSpace(prefs.appID.Text)
	settings.Autostart = prefs.autostart.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

func parsePositiveFloat(value string) (float64, bool) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
