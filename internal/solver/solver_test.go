package solver_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mpmsim/internal/material"
	"github.com/san-kum/mpmsim/internal/mpm"
	"github.com/san-kum/mpmsim/internal/scheme"
	"github.com/san-kum/mpmsim/internal/solver"
)

type countingMetric struct {
	n int
}

func (c *countingMetric) Name() string                   { return "count" }
func (c *countingMetric) Observe(m *mpm.Mesh, t float64) { c.n++ }
func (c *countingMetric) Value() float64                 { return float64(c.n) }
func (c *countingMetric) Reset()                         { c.n = 0 }

func barMesh(mat material.Material, v float64) *mpm.Mesh {
	el, err := mpm.NewLinear1D(1, 1, []int{0})
	Expect(err).NotTo(HaveOccurred())
	p, err := mpm.NewParticles([][]float64{{0.5}}, mat, []int{0})
	Expect(err).NotTo(HaveOccurred())
	Expect(p.SetMassVolume(1)).To(Succeed())
	Expect(p.SetVelocity([]float64{v})).To(Succeed())
	m, err := mpm.NewMesh(el, p)
	Expect(err).NotTo(HaveOccurred())
	return m
}

var _ = Describe("MPMExplicit", func() {
	var (
		ctx context.Context
		usl scheme.Scheme
	)

	BeforeEach(func() {
		ctx = context.Background()
		usl = scheme.NewUSL(0)
	})

	Describe("construction", func() {
		It("rejects a non-positive dt", func() {
			_, err := solver.New(barMesh(material.NewNull(1), 0), 0, usl)
			Expect(err).To(HaveOccurred())
		})

		It("rejects unknown fields", func() {
			_, err := solver.New(barMesh(material.NewNull(1), 0), 0.01, usl, solver.WithFields("pressure"))
			Expect(err).To(MatchError(ContainSubstring("unknown field")))
		})
	})

	Describe("a single particle next to a fixed node", func() {
		It("keeps the fixed node still and moves the free node with the particle", func() {
			m := barMesh(material.NewNull(1), 0.1)
			s, err := solver.New(m, 0.01, usl)
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, 1, []float64{0})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(1))

			nodes := m.Elements.Nodes
			Expect(nodes.Velocity[0]).To(Equal(0.0))
			Expect(nodes.Velocity[1]).To(BeNumerically("~", 0.1, 1e-15))
			Expect(res.Snapshots[0].Fields["velocity"]).To(HaveLen(1))
			Expect(res.Snapshots[0].Fields["velocity"][0]).To(BeNumerically("~", 0.1, 1e-15))
		})
	})

	Describe("recording", func() {
		It("records one snapshot per step with the selected fields", func() {
			m := barMesh(material.NewLinearElastic(100, 0, 1), 0.1)
			s, err := solver.New(m, 0.001, usl, solver.WithFields("velocity", "density", "element_ids"))
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, 50, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Snapshots).To(HaveLen(50))

			last := res.Snapshots[49]
			Expect(last.Step).To(Equal(50))
			Expect(last.Time).To(BeNumerically("~", 0.05, 1e-12))
			Expect(last.Fields).To(HaveKey("velocity"))
			Expect(last.Fields).To(HaveKey("density"))
			Expect(last.Fields).NotTo(HaveKey("loc"))
			Expect(last.Fields["element_ids"]).To(Equal([]float64{0}))

			Expect(res.Series("velocity", 0)).To(HaveLen(50))
			Expect(res.Times()[0]).To(BeNumerically("~", 0.001, 1e-15))
		})

		It("thins snapshots with WithRecordEvery", func() {
			m := barMesh(material.NewNull(1), 0.1)
			s, err := solver.New(m, 0.001, usl, solver.WithRecordEvery(10))
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, 35, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Snapshots).To(HaveLen(3))
			Expect(res.Snapshots[2].Step).To(Equal(30))
		})

		It("copies field data instead of aliasing particle state", func() {
			m := barMesh(material.NewNull(1), 0.1)
			s, err := solver.New(m, 0.01, usl, solver.WithFields("loc"))
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, 2, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Snapshots[0].Fields["loc"][0]).To(BeNumerically("<", res.Snapshots[1].Fields["loc"][0]))
		})
	})

	Describe("metrics and observers", func() {
		It("feeds every completed step to both", func() {
			m := barMesh(material.NewNull(1), 0.1)
			s, err := solver.New(m, 0.01, usl)
			Expect(err).NotTo(HaveOccurred())

			metric := &countingMetric{}
			s.AddMetric(metric)
			var steps []int
			s.AddObserver(solver.ObserverFunc(func(step int, t float64, _ *mpm.Mesh) {
				steps = append(steps, step)
			}))

			res, err := s.Run(ctx, 4, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Metrics).To(HaveKeyWithValue("count", 4.0))
			Expect(steps).To(Equal([]int{1, 2, 3, 4}))
		})
	})

	Describe("failure handling", func() {
		It("stops between steps when the context is canceled", func() {
			m := barMesh(material.NewNull(1), 0.1)
			s, err := solver.New(m, 0.01, usl)
			Expect(err).NotTo(HaveOccurred())

			cctx, cancel := context.WithCancel(ctx)
			s.AddObserver(solver.ObserverFunc(func(step int, _ float64, _ *mpm.Mesh) {
				if step == 3 {
					cancel()
				}
			}))

			res, err := s.Run(cctx, 100, nil)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.StepsTaken).To(Equal(3))
			Expect(res.Snapshots).To(HaveLen(3))
		})

		It("reports diverged state as an unstable simulation error", func() {
			m := barMesh(material.NewNull(1), math.Inf(1))
			s, err := solver.New(m, 0.01, usl)
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, 10, nil)
			Expect(err).To(MatchError(mpm.ErrUnstable))

			var simErr *mpm.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(0))
			Expect(res.StepsTaken).To(Equal(0))
		})

		It("fails the step that moves a particle into a collapsed element", func() {
			el, err := mpm.NewQuadrilateral4Node(2, 1, 1, 1, nil)
			Expect(err).NotTo(HaveOccurred())
			p, err := mpm.NewParticles([][]float64{{0.9, 0.5}}, material.NewNull(1), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.SetMassVolume(1)).To(Succeed())
			Expect(p.SetVelocity([]float64{20, 0})).To(Succeed())
			m, err := mpm.NewMesh(el, p)
			Expect(err).NotTo(HaveOccurred())

			// squash element 1 to zero width; one step carries the particle to x = 1.1
			copy(el.Nodes.Position(2), el.Nodes.Position(1))
			copy(el.Nodes.Position(5), el.Nodes.Position(4))

			s, err := solver.New(m, 0.01, usl)
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, 5, nil)
			Expect(err).To(MatchError(mpm.ErrSingularJacobian))

			var simErr *mpm.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(0))
			Expect(res.StepsTaken).To(Equal(0))
			Expect(res.Snapshots).To(BeEmpty())
		})

		It("rejects gravity of the wrong dimension", func() {
			s, err := solver.New(barMesh(material.NewNull(1), 0), 0.01, usl)
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Run(ctx, 1, []float64{0, -9.81})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("an elastic bar", func() {
		It("oscillates about its rest state", func() {
			m := barMesh(material.NewLinearElastic(100, 0, 1), 0.1)
			s, err := solver.New(m, 0.001, usl)
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, 2000, nil)
			Expect(err).NotTo(HaveOccurred())

			v := res.Series("velocity", 0)
			Expect(v).To(HaveLen(2000))
			lo, hi := v[0], v[0]
			for _, x := range v {
				lo, hi = math.Min(lo, x), math.Max(hi, x)
			}
			Expect(lo).To(BeNumerically("<", 0))
			Expect(hi).To(BeNumerically(">", 0))
			Expect(hi).To(BeNumerically("<", 0.2))
		})
	})
})
