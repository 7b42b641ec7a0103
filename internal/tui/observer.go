package tui

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/mpmsim/internal/mpm"
	"github.com/san-kum/mpmsim/internal/viz"
)

const (
	frameWidth  = 60
	frameHeight = 16
)

// StepMsg carries one rendered snapshot of the mesh.
type StepMsg struct {
	Step          int
	Time          float64
	KineticEnergy float64
	MaxSpeed      float64
	Frame         string
}

// Observer renders the mesh at most fps times a second and hands the frame
// to send. The last step of a run is always sent.
type Observer struct {
	send      func(tea.Msg)
	total     int
	interval  time.Duration
	lastFrame time.Time
}

// NewObserver builds an observer for a run of total steps. fps <= 0 sends
// every step.
func NewObserver(send func(tea.Msg), total, fps int) *Observer {
	o := &Observer{send: send, total: total}
	if fps > 0 {
		o.interval = time.Second / time.Duration(fps)
	}
	return o
}

func (o *Observer) OnStep(step int, t float64, m *mpm.Mesh) {
	if step != o.total && o.interval > 0 && time.Since(o.lastFrame) < o.interval {
		return
	}
	o.lastFrame = time.Now()

	var ke, vmax float64
	for _, p := range m.Particles {
		ke += floats.Sum(p.KineticEnergy())
		for i := 0; i < p.Len(); i++ {
			vmax = math.Max(vmax, floats.Norm(p.VelocityAt(i), 2))
		}
	}

	o.send(StepMsg{
		Step:          step,
		Time:          t,
		KineticEnergy: ke,
		MaxSpeed:      vmax,
		Frame:         viz.RenderMesh(m, frameWidth, frameHeight).String(),
	})
}
