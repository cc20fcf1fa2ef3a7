package main

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"instrument-panel/log"
)

// GPIO button assignments (BCM numbering)
const (
	GPIO_BTN_SHADOWS  = 17 // Pin 11
	GPIO_BTN_SIM_NEXT = 27 // Pin 13
	GPIO_BTN_SIM_UP   = 22 // Pin 15
	GPIO_BTN_SIM_DOWN = 23 // Pin 16
	GPIO_BTN_SIM_PREV = 24 // Pin 18
)

// edgeTimeout bounds each WaitForEdge so Stop is noticed promptly.
const edgeTimeout = 100 * time.Millisecond

// ButtonPin is the part of gpio.PinIO the buttons use.
type ButtonPin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
	WaitForEdge(timeout time.Duration) bool
	Halt() error
}

// PinLookup resolves a pin name such as "GPIO17". It returns nil for
// pins the host does not have.
type PinLookup func(name string) ButtonPin

func periphLookup(name string) ButtonPin {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil
	}
	return p
}

// GPIOButton represents a single GPIO button
type GPIOButton struct {
	pin        int
	name       string
	io         ButtonPin
	lastState  bool
	debounce   time.Duration
	lastChange time.Time
	onPress    func()
}

// GPIOController watches GPIO pins wired as active-low push buttons.
type GPIOController struct {
	lookup   PinLookup
	initHost func() error
	buttons  []*GPIOButton
	lg       *log.Logger

	mu      sync.Mutex
	enabled bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewGPIOController creates a controller backed by the host's GPIO
// drivers.
func NewGPIOController(lg *log.Logger) *GPIOController {
	g := newGPIOController(periphLookup, lg)
	g.initHost = func() error {
		_, err := host.Init()
		return err
	}
	return g
}

func newGPIOController(lookup PinLookup, lg *log.Logger) *GPIOController {
	return &GPIOController{lookup: lookup, lg: lg}
}

// AddButton adds a GPIO button
func (g *GPIOController) AddButton(pin int, name string, onPress func()) {
	g.buttons = append(g.buttons, &GPIOButton{
		pin:      pin,
		name:     name,
		debounce: 50 * time.Millisecond,
		onPress:  onPress,
	})
}

// SetupDefaultButtons maps the panel buttons onto app actions. Presses are
// handed to the frame loop rather than run on the edge goroutines.
func (g *GPIOController) SetupDefaultButtons(app *App) {
	g.AddButton(GPIO_BTN_SHADOWS, "SHADOWS", func() { app.Post(app.toggleShadows) })
	g.AddButton(GPIO_BTN_SIM_NEXT, "SIM_NEXT", func() { app.Post(app.simNext) })
	g.AddButton(GPIO_BTN_SIM_PREV, "SIM_PREV", func() { app.Post(app.simPrev) })
	g.AddButton(GPIO_BTN_SIM_UP, "SIM_UP", func() { app.Post(func() { app.simAdjust(1) }) })
	g.AddButton(GPIO_BTN_SIM_DOWN, "SIM_DOWN", func() { app.Post(func() { app.simAdjust(-1) }) })
}

// Start configures the button pins and waits for edges on each. Without
// GPIO drivers the buttons are disabled and Start returns nil.
func (g *GPIOController) Start() error {
	if g.initHost != nil {
		if err := g.initHost(); err != nil {
			g.lg.Info("GPIO not available, buttons disabled", slog.Any("error", err))
			return nil
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.enabled {
		return nil
	}

	stop := make(chan struct{})
	started := 0
	for _, btn := range g.buttons {
		name := fmt.Sprintf("GPIO%d", btn.pin)
		p := g.lookup(name)
		if p == nil {
			g.lg.Warn("no such GPIO", slog.String("pin", name), slog.String("button", btn.name))
			continue
		}
		if err := p.In(gpio.PullUp, gpio.BothEdges); err != nil {
			g.lg.Warn("could not configure GPIO", slog.String("pin", name), slog.Any("error", err))
			continue
		}
		btn.io = p
		btn.lastState = p.Read() == gpio.Low

		g.wg.Add(1)
		go g.watch(btn, stop)
		started++
	}

	g.enabled = true
	g.stop = stop
	g.lg.Info("GPIO controller started", slog.Int("buttons", started))
	return nil
}

// Stop halts the button pins and waits for their goroutines.
func (g *GPIOController) Stop() {
	g.mu.Lock()
	if !g.enabled {
		g.mu.Unlock()
		return
	}
	g.enabled = false
	close(g.stop)
	g.mu.Unlock()

	for _, btn := range g.buttons {
		if btn.io != nil {
			if err := btn.io.Halt(); err != nil {
				g.lg.Warn("GPIO halt", slog.String("button", btn.name), slog.Any("error", err))
			}
		}
	}
	g.wg.Wait()
}

func (g *GPIOController) watch(btn *GPIOButton, stop chan struct{}) {
	defer g.wg.Done()
	for {
		select {
		case <-stop:
			return
		default:
		}
		// A timeout resamples too, recovering a release lost to debouncing
		btn.io.WaitForEdge(edgeTimeout)
		g.sample(btn, btn.io.Read(), time.Now())
	}
}

// sample records a pin level and fires onPress on a debounced press.
func (g *GPIOController) sample(btn *GPIOButton, level gpio.Level, now time.Time) {
	// Active low
	pressed := level == gpio.Low
	if pressed == btn.lastState || now.Sub(btn.lastChange) <= btn.debounce {
		return
	}
	btn.lastState = pressed
	btn.lastChange = now

	if pressed && btn.onPress != nil {
		g.lg.Debug("button pressed", slog.String("button", btn.name))
		btn.onPress()
	}
}
