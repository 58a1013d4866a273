package sessionclient

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/crosscount/internal/adapters/http/api"
	repository "github.com/okian/crosscount/internal/adapters/repository"
	service "github.com/okian/crosscount/internal/app"
	"github.com/okian/crosscount/internal/domain/model"
	"github.com/okian/crosscount/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// newAPI serves the real ranking API over a memory store.
func newAPI() (*httptest.Server, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	svc := service.New(service.WithLogger(logger.Nop()), service.WithStore(store))
	So(svc.Start(context.Background()), ShouldBeNil)

	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	return httptest.NewServer(mux), store
}

func session(user string, rate float64, crossings int) model.Session {
	return model.Session{
		Username:        user,
		Timestamp:       model.NewTimestamp(time.Now()),
		TotalCrossings:  crossings,
		RatePerMinute:   rate,
		DurationSeconds: 60,
	}
}

func TestSubmitter(t *testing.T) {
	Convey("Given a running API", t, func() {
		srv, store := newAPI()
		defer srv.Close()
		sub := NewSubmitter(srv.URL, time.Second, logger.Nop())
		ctx := context.Background()

		Convey("When a valid session is submitted", func() {
			r := sub.Submit(ctx, session("alice", 42, 42))

			Convey("Then it is accepted with an id", func() {
				So(r.Outcome, ShouldEqual, Accepted)
				So(r.Status, ShouldEqual, http.StatusCreated)
				So(r.ID, ShouldNotBeEmpty)
				So(r.Err, ShouldBeNil)
			})
		})

		Convey("When an invalid session is submitted", func() {
			r := sub.Submit(ctx, session("alice", 42, -1))

			Convey("Then it is rejected with the API message", func() {
				So(r.Outcome, ShouldEqual, Rejected)
				So(r.Status, ShouldEqual, http.StatusBadRequest)
				So(r.Err.Error(), ShouldContainSubstring, "total_crossings")
			})
		})

		Convey("When a batch mixes good and bad sessions", func() {
			batch := []model.Session{
				session("alice", 45, 30),
				session("", 50, 30),
				session("bob", 55, 35),
				session("carol", -1, 10),
				session("alice", 60, 40),
			}
			results := sub.SubmitAll(ctx, batch, 3)
			st := Summarize(results)

			Convey("Then rejections are counted and the rest is stored", func() {
				So(results, ShouldHaveLength, 5)
				So(results[1].Outcome, ShouldEqual, Rejected)
				So(results[3].Outcome, ShouldEqual, Rejected)
				So(st.Accepted, ShouldEqual, 3)
				So(st.Rejected, ShouldEqual, 2)
				So(st.Failed, ShouldEqual, 0)

				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			results := sub.SubmitAll(cctx, []model.Session{session("a", 1, 1), session("b", 1, 1)}, 1)

			Convey("Then nothing is accepted", func() {
				So(Summarize(results).Accepted, ShouldEqual, 0)
				So(Summarize(results).Failed, ShouldEqual, 2)
			})
		})
	})

	Convey("Given an API that fails", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		r := NewSubmitter(srv.URL, time.Second, nil).Submit(context.Background(), session("alice", 1, 1))

		Convey("Then the submission is failed, not rejected", func() {
			So(r.Outcome, ShouldEqual, Failed)
			So(r.Status, ShouldEqual, http.StatusInternalServerError)
			So(r.Outcome.String(), ShouldEqual, "failed")
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running API and a results file", t, func() {
		srv, _ := newAPI()
		defer srv.Close()

		path := filepath.Join(t.TempDir(), "crossing_results.json")
		So(repository.WriteResultsFile(path, []model.Session{
			session("alice", 45, 30),
			session("alice", 60, 40),
			session("bob", 55, 35),
		}), ShouldBeNil)

		cfg := &Config{BaseURL: srv.URL, ResultsFile: path, Workers: 2, Timeout: time.Second, Top: 5}

		Convey("When the run completes", func() {
			var out bytes.Buffer
			st, err := Run(context.Background(), cfg, &out)

			Convey("Then every session is accepted and the board is printed", func() {
				So(err, ShouldBeNil)
				So(st.Submitted, ShouldEqual, 3)
				So(st.Accepted, ShouldEqual, 3)
				So(out.String(), ShouldContainSubstring, "alice")
				So(out.String(), ShouldContainSubstring, "Players: 2")
			})
		})

		Convey("When fewer rankings are asked for than there are players", func() {
			cfg.Top = 1
			var out bytes.Buffer
			_, err := Run(context.Background(), cfg, &out)

			Convey("Then the board is cut to the top entries", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldContainSubstring, "Showing 1 of 2 players")
			})
		})

		Convey("When more rankings are asked for than the server allows", func() {
			cfg.Top = 500
			var out bytes.Buffer
			_, err := Run(context.Background(), cfg, &out)

			Convey("Then the full board is still printed", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldContainSubstring, "alice")
				So(out.String(), ShouldContainSubstring, "bob")
				So(out.String(), ShouldNotContainSubstring, "Showing")
			})
		})

		Convey("When there is nothing to submit", func() {
			cfg.ResultsFile = filepath.Join(t.TempDir(), "missing.json")
			_, err := Run(context.Background(), cfg, nil)

			So(errors.Is(err, ErrNoSessions), ShouldBeTrue)
		})
	})

	Convey("Given no API", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := Run(context.Background(), &Config{BaseURL: url, Workers: 1, Timeout: time.Second}, nil)

		Convey("Then the health check fails first", func() {
			So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
		})
	})
}

func TestShowHelp(t *testing.T) {
	Convey("ShowHelp documents the flags", t, func() {
		var buf bytes.Buffer
		ShowHelp(&buf)
		So(buf.String(), ShouldContainSubstring, "-file string")
		So(buf.String(), ShouldContainSubstring, "-username string")
	})
}
