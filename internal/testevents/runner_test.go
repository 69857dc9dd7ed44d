package testevents

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/fsrfilter/internal/adapters/http/api"
	service "github.com/okian/fsrfilter/internal/app"
	"github.com/okian/fsrfilter/internal/domain/veto"
	"github.com/okian/fsrfilter/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// startServer runs a filter service behind a test HTTP server.
func startServer(p veto.Policy) (*httptest.Server, func()) {
	svc := service.New(service.WithWorkerCount(4), service.WithPolicy(p))
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc, 100).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	return srv, func() {
		srv.Close()
		svc.Stop()
	}
}

func testConfig(baseURL string, p veto.Policy) *Config {
	return &Config{
		BaseURL:   baseURL,
		NumEvents: 60,
		VetoLimit: 20,
		Workers:   4,
		Timeout:   5 * time.Second,
		Settle:    5 * time.Second,
		Policy:    p,
		Seed:      11,
	}
}

func TestRun(t *testing.T) {
	Convey("Given a service running the radiated policy", t, func() {
		srv, stop := startServer(veto.PolicyRadiated)
		defer stop()
		ctx := context.Background()

		Convey("When a run expects the same policy", func() {
			cfg := testConfig(srv.URL, veto.PolicyRadiated)
			cfg.OutputFile = filepath.Join(t.TempDir(), "out", "events.json")
			report, err := Run(ctx, cfg)

			Convey("Then every verdict should match", func() {
				So(err, ShouldBeNil)
				So(report.Stats.EventsAccepted, ShouldEqual, 60)
				So(report.Stats.DecisionsChecked, ShouldEqual, 60)
				So(report.Stats.Mismatches, ShouldEqual, 0)
				So(report.Stats.VetoesListed, ShouldEqual, 20)
			})

			Convey("Then the scenarios should be saved", func() {
				_, statErr := os.Stat(cfg.OutputFile)
				So(statErr, ShouldBeNil)
			})
		})

		Convey("When a run expects the direct-lepton policy", func() {
			report, err := Run(ctx, testConfig(srv.URL, veto.PolicyDirectLepton))

			Convey("Then the differing kinds should be reported as mismatches", func() {
				So(errors.Is(err, ErrVerification), ShouldBeTrue)
				So(report, ShouldNotBeNil)
				So(report.Stats.Mismatches, ShouldEqual, 24)
				for _, m := range report.Mismatches {
					So(m.Kind, ShouldBeIn, KindFSRCollinear, KindISRIsolated)
				}
			})
		})
	})

	Convey("Given no service listening", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		Convey("Then the health check should fail the run", func() {
			report, err := Run(context.Background(), testConfig(url, veto.PolicyRadiated))
			So(err, ShouldNotBeNil)
			So(report, ShouldBeNil)
		})
	})
}
