package solver_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/aerolattice/internal/mesh"
	"github.com/san-kum/aerolattice/internal/solver"
	"github.com/san-kum/aerolattice/internal/vortex"
)

func deg(d float64) float64 { return d * math.Pi / 180 }

func lattice(spec mesh.SurfaceSpec) *vortex.Lattice {
	surf, err := mesh.Discretize(spec)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return vortex.NewLattice(surf)
}

func rectangle(span float64, n, m int, spacing mesh.Spacing) mesh.SurfaceSpec {
	return mesh.SurfaceSpec{
		Name:       "wing",
		Planform:   mesh.Trapezoid{RootChord: 1, TipChord: 1, Span: span / 2},
		SpanCount:  n,
		ChordCount: m,
		Spacing:    spacing,
		Symmetric:  true,
	}
}

func condition(alpha float64, ref vortex.Reference) vortex.FlowCondition {
	return vortex.FlowCondition{Airspeed: 50, Alpha: alpha, Density: 1.225, Reference: ref}
}

func rectRef(span float64) vortex.Reference {
	return vortex.Reference{Area: span, Span: span, Chord: 1}
}

var _ = Describe("Vortex lattice solver", func() {
	Context("rectangular AR 10 wing, 8x1 panels, 5 degrees", func() {
		var res *vortex.Results

		BeforeEach(func() {
			full := mesh.SurfaceSpec{
				Name:       "wing",
				Planform:   mesh.Trapezoid{Origin: vortex.Vec3{Y: -5}, RootChord: 1, TipChord: 1, Span: 10},
				SpanCount:  8,
				ChordCount: 1,
			}
			var err error
			res, err = solver.Solve(lattice(full), condition(deg(5), rectRef(10)))
			Expect(err).NotTo(HaveOccurred())
		})

		It("predicts lift and induced drag of the right magnitude", func() {
			Expect(res.CL).To(BeNumerically(">=", 0.40))
			Expect(res.CL).To(BeNumerically("<=", 0.47))
			Expect(res.CDi).To(BeNumerically(">=", 0.002))
			Expect(res.CDi).To(BeNumerically("<=", 0.006))
			Expect(res.AspectRatio).To(BeNumerically("~", 10, 1e-12))
		})

		It("distributes circulation symmetrically about the centreline", func() {
			g := res.Circulation()
			Expect(g).To(HaveLen(8))
			for i := range g {
				Expect(g[i]).To(BeNumerically("~", g[len(g)-1-i], 1e-9*math.Abs(g[i])))
			}
		})

		It("matches the mirrored half-wing definition", func() {
			half, err := solver.Solve(lattice(rectangle(10, 4, 1, mesh.Uniform)), condition(deg(5), rectRef(10)))
			Expect(err).NotTo(HaveOccurred())
			Expect(half.CL).To(BeNumerically("~", res.CL, 1e-9))
			Expect(half.CDi).To(BeNumerically("~", res.CDi, 1e-9))
		})

		It("reports sections for every strip", func() {
			Expect(res.Sections).To(HaveLen(8))
			for _, s := range res.Sections {
				Expect(s.Cl).To(BeNumerically(">", 0))
				Expect(s.InducedAngle).To(BeNumerically(">", 0))
			}
		})
	})

	Context("mirrored wings", func() {
		It("keeps mirrored circulation equal", func() {
			spec := mesh.SurfaceSpec{
				Name:       "swept",
				Planform:   mesh.Trapezoid{RootChord: 1.4, TipChord: 0.6, Span: 6, Sweep: deg(25), Dihedral: deg(5), TipTwist: deg(-2)},
				SpanCount:  10,
				ChordCount: 3,
				Spacing:    mesh.Cosine,
				Symmetric:  true,
			}
			res, err := solver.Solve(lattice(spec), condition(deg(6), vortex.Reference{Area: 12, Span: 12, Chord: 1}))
			Expect(err).NotTo(HaveOccurred())

			g := res.Circulation()
			surf, err := mesh.Discretize(spec)
			Expect(err).NotTo(HaveOccurred())
			n := len(surf.Strips)
			for k := 0; k < n/2; k++ {
				l, r := surf.Strips[k], surf.Strips[n-1-k]
				for row := 0; row < l.Count; row++ {
					Expect(g[l.First+row]).To(BeNumerically("~", g[r.First+row], 1e-9))
				}
			}
			Expect(res.CY).To(BeNumerically("~", 0, 1e-9))
			Expect(res.Croll).To(BeNumerically("~", 0, 1e-9))
			Expect(res.Cyaw).To(BeNumerically("~", 0, 1e-9))
		})
	})

	Context("high aspect ratio", func() {
		slope := func(span float64) float64 {
			s, err := solver.New(lattice(rectangle(span, 16, 1, mesh.Cosine)), solver.Options{})
			Expect(err).NotTo(HaveOccurred())
			lo, err := s.Solve(condition(deg(-1), rectRef(span)))
			Expect(err).NotTo(HaveOccurred())
			hi, err := s.Solve(condition(deg(3), rectRef(span)))
			Expect(err).NotTo(HaveOccurred())
			return (hi.CL - lo.CL) / deg(4)
		}

		It("approaches the thin-airfoil lift slope", func() {
			a50 := slope(50)
			a200 := slope(200)
			Expect(a50).To(BeNumerically("<", a200))
			Expect(a200).To(BeNumerically("<", 2*math.Pi))
			Expect(a200 / (2 * math.Pi)).To(BeNumerically("~", 1, 0.03))
		})
	})

	Context("induced drag", func() {
		DescribeTable("is never negative",
			func(spec mesh.SurfaceSpec, alpha float64) {
				res, err := solver.Solve(lattice(spec), condition(deg(alpha), vortex.Reference{Area: 10, Span: 10, Chord: 1}))
				Expect(err).NotTo(HaveOccurred())
				Expect(res.CDi).To(BeNumerically(">=", 0))
				Expect(res.SpanEfficiency).To(BeNumerically(">", 0))
			},
			Entry("rectangle, positive alpha", rectangle(10, 6, 2, mesh.Uniform), 6.0),
			Entry("rectangle, negative alpha", rectangle(10, 6, 2, mesh.Cosine), -4.0),
			Entry("tapered swept dihedral", mesh.SurfaceSpec{
				Planform:   mesh.Trapezoid{RootChord: 1.5, TipChord: 0.5, Span: 5, Sweep: deg(30), Dihedral: deg(6)},
				SpanCount:  8,
				ChordCount: 2,
				Spacing:    mesh.Cosine,
				Symmetric:  true,
			}, 3.0),
		)

		It("gives unit span efficiency for an elliptical planform", func() {
			spec := mesh.SurfaceSpec{
				Name:       "ellipse",
				Planform:   mesh.Elliptical{RootChord: 1, Span: 5},
				SpanCount:  12,
				ChordCount: 1,
				Spacing:    mesh.Cosine,
				Symmetric:  true,
			}
			ref := vortex.Reference{Area: math.Pi * 10 / 4, Span: 10, Chord: 1}
			res, err := solver.Solve(lattice(spec), condition(deg(4), ref))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.SpanEfficiency).To(BeNumerically("~", 1, 0.005))
		})
	})

	Context("grid refinement", func() {
		It("converges when spanwise and chordwise counts double", func() {
			fc := condition(deg(5), rectRef(10))
			coarse, err := solver.Solve(lattice(rectangle(10, 8, 2, mesh.Cosine)), fc)
			Expect(err).NotTo(HaveOccurred())
			fine, err := solver.Solve(lattice(rectangle(10, 16, 4, mesh.Cosine)), fc)
			Expect(err).NotTo(HaveOccurred())

			Expect(math.Abs(fine.CL-coarse.CL) / fine.CL).To(BeNumerically("<", 0.01))
			Expect(math.Abs(fine.CDi-coarse.CDi) / fine.CDi).To(BeNumerically("<", 0.01))
		})
	})

	Context("invalid input", func() {
		It("rejects an empty lattice", func() {
			_, err := solver.Solve(vortex.NewLattice(), condition(deg(5), rectRef(10)))
			Expect(err).To(MatchError(vortex.ErrEmptyLattice))
		})

		It("rejects a zero reference area", func() {
			_, err := solver.Solve(lattice(rectangle(10, 4, 1, mesh.Uniform)), condition(deg(5), vortex.Reference{Span: 10, Chord: 1}))
			Expect(err).To(MatchError(vortex.ErrIncompatibleGeometry))
		})
	})
})
