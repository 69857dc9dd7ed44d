package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/fsrfilter/internal/config"
	"github.com/okian/fsrfilter/internal/domain/veto"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.GenTag, convey.ShouldEqual, "genParticles")
			convey.So(cfg.Policy, convey.ShouldEqual, "radiated")
			convey.So(cfg.EventQueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 500_000)
			convey.So(cfg.ShardCount, convey.ShouldEqual, 16)
			convey.So(cfg.MaxVetoLimit, convey.ShouldEqual, 100)
		})

		convey.Convey("Then the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.VetoPolicy(), convey.ShouldEqual, veto.PolicyRadiated)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When the generator tag is blank", func() {
			cfg.GenTag = "  "
			err := cfg.Validate()

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "gen_tag must not be empty")
			})
		})

		convey.Convey("When the policy is unknown", func() {
			cfg.Policy = "v9"
			err := cfg.Validate()

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the policy is given by generation", func() {
			cfg.Policy = "v1"

			convey.Convey("Then it should resolve to the direct-lepton rules", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
				convey.So(cfg.VetoPolicy(), convey.ShouldEqual, veto.PolicyDirectLepton)
			})
		})
	})
}
