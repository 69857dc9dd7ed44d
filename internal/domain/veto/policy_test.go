package veto_test

import (
	"errors"
	"testing"

	veto "github.com/okian/fsrfilter/internal/domain/veto"
	. "github.com/smartystreets/goconvey/convey"
)

func TestThresholds(t *testing.T) {
	Convey("Given the default thresholds", t, func() {
		th := veto.DefaultThresholds()

		Convey("Then the energy cut should be exclusive at 10", func() {
			So(th.Energetic(10.0), ShouldBeFalse)
			So(th.Energetic(9.99), ShouldBeFalse)
			So(th.Energetic(10.0001), ShouldBeTrue)
		})

		Convey("Then the isolation cut should be exclusive at 0.4", func() {
			So(th.Isolated(0.4), ShouldBeFalse)
			So(th.Isolated(0.2), ShouldBeFalse)
			So(th.Isolated(0.4001), ShouldBeTrue)
		})
	})
}

func TestParsePolicy(t *testing.T) {
	Convey("Given policy names", t, func() {
		Convey("When parsing version aliases", func() {
			p1, err1 := veto.ParsePolicy("v1")
			p2, err2 := veto.ParsePolicy("V2")
			p3, err3 := veto.ParsePolicy(" v3 ")

			Convey("Then each should map to its generation", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(p1, ShouldEqual, veto.PolicyDirectLepton)
				So(p2, ShouldEqual, veto.PolicyLeptonParentage)
				So(p3, ShouldEqual, veto.PolicyRadiated)
			})
		})

		Convey("When parsing full names", func() {
			for _, p := range []veto.Policy{veto.PolicyRadiated, veto.PolicyLeptonParentage, veto.PolicyDirectLepton} {
				got, err := veto.ParsePolicy(p.String())
				So(err, ShouldBeNil)
				So(got, ShouldEqual, p)
			}
		})

		Convey("When parsing an empty string", func() {
			p, err := veto.ParsePolicy("")

			Convey("Then it should default to the radiated policy", func() {
				So(err, ShouldBeNil)
				So(p, ShouldEqual, veto.PolicyRadiated)
			})
		})

		Convey("When parsing an unknown name", func() {
			_, err := veto.ParsePolicy("v4")

			Convey("Then it should return ErrUnknownPolicy", func() {
				So(errors.Is(err, veto.ErrUnknownPolicy), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "v4")
			})
		})
	})
}

func TestPolicy_Origin(t *testing.T) {
	Convey("Given a photon radiated by a quark", t, func() {
		Convey("Then only the radiated policy should call it ISR", func() {
			So(veto.PolicyRadiated.Origin(2, 2212), ShouldEqual, veto.OriginISR)
			So(veto.PolicyLeptonParentage.Origin(2, 2212), ShouldEqual, veto.OriginNone)
			So(veto.PolicyDirectLepton.Origin(2, 2212), ShouldEqual, veto.OriginNone)
		})
	})

	Convey("Given a photon radiated by a muon from a Z", t, func() {
		Convey("Then every policy should call it FSR", func() {
			So(veto.PolicyRadiated.Origin(13, 23), ShouldEqual, veto.OriginFSR)
			So(veto.PolicyLeptonParentage.Origin(-13, 23), ShouldEqual, veto.OriginFSR)
			So(veto.PolicyDirectLepton.Origin(13, 23), ShouldEqual, veto.OriginFSR)
		})
	})

	Convey("Given a photon radiated by a tau", t, func() {
		Convey("Then the direct-lepton policy should ignore it", func() {
			So(veto.PolicyDirectLepton.Origin(15, 23), ShouldEqual, veto.OriginNone)
			So(veto.PolicyRadiated.Origin(15, 23), ShouldEqual, veto.OriginFSR)
		})
	})
}
