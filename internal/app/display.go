package app

import (
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/hunt_navigator/internal/config"
	"github.com/relabs-tech/hunt_navigator/internal/hunt"
	"github.com/relabs-tech/hunt_navigator/internal/logging"
)

const (
	displayWidth  = 128
	displayHeight = 64
	arrowLength   = 26
)

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	indicator     IndicatorMessage
	haveIndicator bool

	stage     hunt.Event
	haveStage bool
}

type displaySnapshot struct {
	indicator     IndicatorMessage
	haveIndicator bool
	stage         hunt.Event
	haveStage     bool
}

func (d *DisplayData) snapshot() displaySnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return displaySnapshot{
		indicator:     d.indicator,
		haveIndicator: d.haveIndicator,
		stage:         d.stage,
		haveStage:     d.haveStage,
	}
}

// RunDisplay renders the compass arrow and distance on an SSD1306 OLED.
func RunDisplay() error {
	cfg := config.Get()
	logger := logging.For("display")

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	logger.Info().Msg("display initialized")

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		logger.Warn().Err(err).Msg("error showing splash")
	}

	data := &DisplayData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay, nil)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	logger.Info().Str("broker", cfg.MQTTBroker).Msg("connected to MQTT broker")

	if err := subscribeJSON(client, logger, cfg.TopicIndicator, func(m IndicatorMessage) {
		data.mu.Lock()
		data.indicator = m
		data.haveIndicator = true
		data.mu.Unlock()
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, logger, cfg.TopicStage, func(ev hunt.Event) {
		data.mu.Lock()
		data.stage = ev
		data.haveStage = true
		data.mu.Unlock()
	}); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()
	logger.Info().Msg("starting update loop")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down")
			return nil
		case <-ticker.C:
		}
		if err := dev.Draw(dev.Bounds(), renderDisplay(data.snapshot()), image.Point{}); err != nil {
			logger.Warn().Err(err).Msg("error updating display")
		}
	}
}

func newFrame() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawText(d *font.Drawer, x, y int, s string) {
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

func renderSplash() *image1bit.VerticalLSB {
	img, drawer := newFrame()
	drawText(drawer, 10, 26, "Hunt Navigator")
	drawText(drawer, 5, 43, "Looking for")
	drawText(drawer, 25, 56, "sats")
	return img
}

func renderDisplay(s displaySnapshot) *image1bit.VerticalLSB {
	img, drawer := newFrame()

	if s.haveStage {
		switch s.stage.Stage {
		case hunt.StageArrived:
			drawText(drawer, 0, 26, "ARRIVED")
			drawText(drawer, 0, 43, "Find the object")
			return img
		case hunt.StageComplete:
			drawText(drawer, 0, 26, "All found!")
			drawText(drawer, 0, 43, fmt.Sprintf("%d/%d collected", s.stage.Collected, s.stage.Total))
			return img
		case hunt.StageBriefing, hunt.StageDebrief:
			drawText(drawer, 0, 26, "Incoming call")
			drawText(drawer, 0, 43, s.stage.Mission.ID)
			return img
		}
	}

	if !s.haveIndicator || !s.indicator.Visible {
		drawText(drawer, 0, 26, "Compass")
		drawText(drawer, 0, 39, "Waiting...")
		return img
	}

	ind := s.indicator
	if ind.HaveAngle {
		drawArrow(img, displayHeight/2, displayHeight/2, ind.Angle)
	} else {
		drawText(drawer, 24, 36, "?")
	}
	if ind.HaveDistance {
		drawText(drawer, 68, 26, formatDistance(ind.DistanceM))
		drawText(drawer, 68, 43, fmt.Sprintf("%3.0f deg", ind.Bearing))
	}
	if s.haveStage {
		drawText(drawer, 68, 60, s.stage.Mission.ID)
	}
	return img
}

func formatDistance(m float64) string {
	if m >= 1000 {
		return fmt.Sprintf("%.1f km", m/1000)
	}
	return fmt.Sprintf("%.0f m", m)
}

// drawArrow draws an arrow from (cx, cy) rotated angle degrees clockwise
// from screen up.
func drawArrow(img *image1bit.VerticalLSB, cx, cy int, angle float64) {
	tipX, tipY := polar(cx, cy, arrowLength, angle)
	tailX, tailY := polar(cx, cy, arrowLength/2, angle+180)
	drawLine(img, tailX, tailY, tipX, tipY)

	for _, side := range []float64{150, -150} {
		x, y := polar(tipX, tipY, 8, angle+side)
		drawLine(img, tipX, tipY, x, y)
	}
}

func polar(cx, cy int, r, angle float64) (int, int) {
	rad := angle * math.Pi / 180
	return cx + int(math.Round(r*math.Sin(rad))), cy - int(math.Round(r*math.Cos(rad)))
}

// drawLine is Bresenham; points outside the image are ignored.
func drawLine(img *image1bit.VerticalLSB, x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		if image.Pt(x0, y0).In(img.Bounds()) {
			img.SetBit(x0, y0, image1bit.On)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
