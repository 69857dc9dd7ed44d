package veto_test

import (
	"testing"

	"github.com/okian/fsrfilter/internal/domain/model"
	veto "github.com/okian/fsrfilter/internal/domain/veto"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIsFSR(t *testing.T) {
	Convey("Given the final-state radiation rule", t, func() {
		Convey("When a lepton mother descends from a Z", func() {
			Convey("Then every lepton flavour and charge should match", func() {
				for _, m := range []int{11, -11, 13, -13, 15, -15} {
					So(veto.IsFSR(m, 23), ShouldBeTrue)
					So(veto.IsFSR(m, -23), ShouldBeTrue)
				}
			})
		})

		Convey("When a lepton mother descends from a photon", func() {
			So(veto.IsFSR(11, 22), ShouldBeTrue)
			So(veto.IsFSR(-13, -22), ShouldBeTrue)
		})

		Convey("When the grandmother is a copy of the mother", func() {
			So(veto.IsFSR(13, 13), ShouldBeTrue)
			So(veto.IsFSR(22, 22), ShouldBeTrue)
		})

		Convey("When the grandmother is the antiparticle of the mother", func() {
			Convey("Then it should not match", func() {
				So(veto.IsFSR(13, -13), ShouldBeFalse)
			})
		})

		Convey("When the mother is not a lepton or photon", func() {
			So(veto.IsFSR(2, 23), ShouldBeFalse)
			So(veto.IsFSR(21, 22), ShouldBeFalse)
			So(veto.IsFSR(24, 23), ShouldBeFalse)
		})

		Convey("When the grandmother is absent", func() {
			So(veto.IsFSR(22, model.NoAncestor), ShouldBeFalse)
			So(veto.IsFSR(13, model.NoAncestor), ShouldBeFalse)
		})

		Convey("When the grandmother is a W", func() {
			So(veto.IsFSR(11, 24), ShouldBeFalse)
		})
	})
}

func TestIsISR(t *testing.T) {
	Convey("Given the initial-state radiation rule", t, func() {
		Convey("When the mother is a quark", func() {
			Convey("Then every flavour should match regardless of the grandmother", func() {
				for _, m := range []int{1, 2, 3, 4, 5, 6, -1, -2, -6} {
					So(veto.IsISR(m, model.NoAncestor), ShouldBeTrue)
				}
			})
		})

		Convey("When the mother is a gluon", func() {
			So(veto.IsISR(21, 2212), ShouldBeTrue)
		})

		Convey("When a photon mother descends from a parton", func() {
			So(veto.IsISR(22, 2), ShouldBeTrue)
			So(veto.IsISR(22, -5), ShouldBeTrue)
			So(veto.IsISR(22, 21), ShouldBeTrue)
		})

		Convey("When a photon mother has no grandmother", func() {
			Convey("Then the sentinel should not count as a quark", func() {
				So(veto.IsISR(22, model.NoAncestor), ShouldBeFalse)
			})
		})

		Convey("When a photon mother descends from a lepton", func() {
			So(veto.IsISR(22, 11), ShouldBeFalse)
		})

		Convey("When the mother is a top-flavoured hadron or a lepton", func() {
			So(veto.IsISR(7, 2), ShouldBeFalse)
			So(veto.IsISR(13, 2), ShouldBeFalse)
			So(veto.IsISR(111, 2), ShouldBeFalse)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given mother and grandmother codes", t, func() {
		cases := []struct {
			mother, grandmother int
			want                veto.Origin
		}{
			{13, 23, veto.OriginFSR},
			{-11, 22, veto.OriginFSR},
			{15, 15, veto.OriginFSR},
			{22, 23, veto.OriginFSR},
			{2, model.NoAncestor, veto.OriginISR},
			{21, 21, veto.OriginISR},
			{22, 1, veto.OriginISR},
			{22, model.NoAncestor, veto.OriginNone},
			{111, 2, veto.OriginNone},
			{13, 24, veto.OriginNone},
		}

		Convey("Then each pair should map to exactly one origin", func() {
			for _, c := range cases {
				So(veto.Classify(c.mother, c.grandmother), ShouldEqual, c.want)
			}
		})

		Convey("Then FSR and ISR should never both hold", func() {
			for m := -30; m <= 30; m++ {
				for g := -30; g <= 30; g++ {
					So(veto.IsFSR(m, g) && veto.IsISR(m, g), ShouldBeFalse)
				}
			}
		})
	})
}

func TestOrigin_String(t *testing.T) {
	Convey("Given each origin", t, func() {
		So(veto.OriginFSR.String(), ShouldEqual, "fsr")
		So(veto.OriginISR.String(), ShouldEqual, "isr")
		So(veto.OriginNone.String(), ShouldEqual, "none")
	})
}

func TestEffectiveGrandmother(t *testing.T) {
	Convey("Given a lepton mother without a recorded parent", t, func() {
		g := veto.EffectiveGrandmother(-11, 0, false)

		Convey("Then the mother should stand in for the grandmother", func() {
			So(g, ShouldEqual, -11)
			So(veto.Classify(-11, g), ShouldEqual, veto.OriginFSR)
		})
	})

	Convey("Given a quark mother without a recorded parent", t, func() {
		Convey("Then the missing grandmother should be kept", func() {
			So(veto.EffectiveGrandmother(1, 0, false), ShouldEqual, 0)
		})
	})

	Convey("Given a known grandmother", t, func() {
		Convey("Then it should be returned unchanged", func() {
			So(veto.EffectiveGrandmother(13, 23, true), ShouldEqual, 23)
		})
	})
}
