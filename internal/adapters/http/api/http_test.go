package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/crosscount/internal/adapters/http/api"
	repository "github.com/okian/crosscount/internal/adapters/repository"
	service "github.com/okian/crosscount/internal/app"
	"github.com/okian/crosscount/internal/domain/model"
	"github.com/okian/crosscount/internal/domain/types"
	"github.com/okian/crosscount/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func seed(user string, rate float64, crossings int, ago time.Duration) model.Session {
	return model.Session{
		Username:        user,
		Timestamp:       model.NewTimestamp(time.Now().Add(-ago)),
		TotalCrossings:  crossings,
		RatePerMinute:   rate,
		DurationSeconds: 60,
	}
}

// newMux starts a service over a memory store holding sessions and registers the API.
func newMux(opts []api.Option, sessions ...model.Session) (*http.ServeMux, *service.Service) {
	svc := service.New(
		service.WithLogger(logger.Nop()),
		service.WithStore(repository.NewMemoryStore(sessions...)),
		service.WithMaxRankings(5),
	)
	So(svc.Start(context.Background()), ShouldBeNil)

	mux := http.NewServeMux()
	api.NewServer(svc, opts...).Register(context.Background(), mux)
	return mux, svc
}

func do(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

func TestRankingsEndpoint(t *testing.T) {
	Convey("Given an API over alice(45, 60) and bob(55)", t, func() {
		mux, svc := newMux(nil,
			seed("alice", 45, 30, 2*time.Hour),
			seed("alice", 60, 40, time.Hour),
			seed("bob", 55, 35, time.Hour),
		)
		defer svc.Stop()

		Convey("When GET /api/rankings is called", func() {
			w := do(mux, http.MethodGet, "/api/rankings", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			body := decode[types.Rankings](w)

			Convey("Then users are ranked by best rate", func() {
				So(body.TotalUsers, ShouldEqual, 2)
				So(body.Rankings, ShouldHaveLength, 2)
				So(body.Rankings[0].Rank, ShouldEqual, 1)
				So(body.Rankings[0].Username, ShouldEqual, "alice")
				So(body.Rankings[0].BestRate, ShouldEqual, 60)
				So(body.Rankings[0].AvgRate, ShouldEqual, 52.5)
				So(body.Rankings[0].BestCrossings, ShouldEqual, 40)
				So(body.Rankings[0].TotalSessions, ShouldEqual, 2)
				So(body.Rankings[1].Username, ShouldEqual, "bob")
			})
		})

		Convey("When a limit of 1 is given", func() {
			w := do(mux, http.MethodGet, "/api/rankings?limit=1", "")
			body := decode[types.Rankings](w)

			Convey("Then only the leader is listed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body.Rankings, ShouldHaveLength, 1)
				So(body.TotalUsers, ShouldEqual, 2)
			})
		})

		Convey("When the limit is invalid", func() {
			for _, q := range []string{"0", "-3", "abc"} {
				w := do(mux, http.MethodGet, "/api/rankings?limit="+q, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[errorBody](w).Code, ShouldEqual, "bad_request")
			}
		})

		Convey("When the limit is above the maximum", func() {
			w := do(mux, http.MethodGet, "/api/rankings?limit=6", "")

			Convey("Then limit_exceeded is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[errorBody](w).Code, ShouldEqual, "limit_exceeded")
			})
		})

		Convey("When a non-GET method is used", func() {
			w := do(mux, http.MethodDelete, "/api/rankings", "")

			Convey("Then 405 is returned with an Allow header", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, http.MethodGet)
			})
		})
	})

	Convey("Given an empty API", t, func() {
		mux, svc := newMux(nil)
		defer svc.Stop()

		w := do(mux, http.MethodGet, "/api/rankings", "")

		Convey("Then rankings is an empty array, not null", func() {
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"rankings":[]`)
			So(w.Body.String(), ShouldContainSubstring, `"total_users":0`)
		})
	})
}

func TestUserEndpoint(t *testing.T) {
	Convey("Given an API with two users", t, func() {
		mux, svc := newMux(nil,
			seed("alice", 45, 30, 2*time.Hour),
			seed("alice", 60, 40, time.Hour),
			seed("bob smith", 70, 50, time.Hour),
		)
		defer svc.Stop()

		Convey("When a known user is requested", func() {
			w := do(mux, http.MethodGet, "/api/rankings/user/alice", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode[types.UserStats](w)

			Convey("Then stats and sessions newest first are returned", func() {
				So(body.Username, ShouldEqual, "alice")
				So(body.Stats.Rank, ShouldEqual, 2)
				So(body.Stats.BestRate, ShouldEqual, 60)
				So(body.Stats.AvgRate, ShouldEqual, 52.5)
				So(body.Stats.TotalSessions, ShouldEqual, 2)
				So(body.Sessions, ShouldHaveLength, 2)
				So(body.Sessions[0].RatePerMinute, ShouldEqual, 60)
			})
		})

		Convey("When an escaped username is requested", func() {
			w := do(mux, http.MethodGet, "/api/rankings/user/bob%20smith", "")

			Convey("Then it is resolved", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[types.UserStats](w).Stats.Rank, ShouldEqual, 1)
			})
		})

		Convey("When an unknown user is requested", func() {
			w := do(mux, http.MethodGet, "/api/rankings/user/carol", "")

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				body := decode[errorBody](w)
				So(body.Code, ShouldEqual, "not_found")
				So(body.Message, ShouldEqual, "user not found")
			})
		})

		Convey("When the username is missing", func() {
			w := do(mux, http.MethodGet, "/api/rankings/user/", "")

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestStatsAndHealthEndpoints(t *testing.T) {
	Convey("Given an API with three sessions", t, func() {
		mux, svc := newMux(nil,
			seed("alice", 45, 30, time.Hour),
			seed("alice", 60, 40, time.Hour),
			seed("bob", 55, 35, time.Hour),
		)
		defer svc.Stop()

		Convey("When GET /api/stats is called", func() {
			w := do(mux, http.MethodGet, "/api/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode[types.GlobalStats](w)

			Convey("Then global stats are rounded to one decimal", func() {
				So(body.TotalSessions, ShouldEqual, 3)
				So(body.TotalUsers, ShouldEqual, 2)
				So(body.GlobalBestRate, ShouldEqual, 60)
				So(body.GlobalAvgRate, ShouldEqual, 53.3)
				So(body.GlobalBestCrossings, ShouldEqual, 40)
			})
		})

		Convey("When GET /api/health is called", func() {
			w := do(mux, http.MethodGet, "/api/health", "")
			body := decode[map[string]string](w)

			Convey("Then the service reports healthy", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body["status"], ShouldEqual, "healthy")
				_, err := model.ParseTimestamp(body["timestamp"])
				So(err, ShouldBeNil)
			})
		})

		Convey("When the service is stopped", func() {
			svc.Stop()
			w := do(mux, http.MethodGet, "/api/health", "")

			Convey("Then health reports 503", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(decode[map[string]string](w)["status"], ShouldEqual, "unhealthy")
			})
		})

		Convey("When /metrics is scraped", func() {
			do(mux, http.MethodGet, "/api/stats", "")
			w := do(mux, http.MethodGet, "/metrics", "")

			Convey("Then HTTP metrics are exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "crosscount_leaderboard_http_requests_total")
			})
		})
	})
}

func TestSubmitEndpoint(t *testing.T) {
	Convey("Given an empty API", t, func() {
		mux, svc := newMux([]api.Option{api.WithMaxBodyBytes(512)})
		defer svc.Stop()

		Convey("When a valid session is posted", func() {
			w := do(mux, http.MethodPost, "/api/submit",
				`{"username":"dana","timestamp":"2025-09-08 10:00:00","total_crossings":20,"counts_per_minute":30.25,"session_duration_seconds":40}`)

			Convey("Then it is created and visible in rankings", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				body := decode[map[string]string](w)
				So(body["message"], ShouldEqual, "Session submitted successfully")
				So(body["id"], ShouldNotBeEmpty)

				r := decode[types.Rankings](do(mux, http.MethodGet, "/api/rankings", ""))
				So(r.Rankings, ShouldHaveLength, 1)
				So(r.Rankings[0].Username, ShouldEqual, "dana")
				So(r.Rankings[0].BestRate, ShouldEqual, 30.3)
			})
		})

		Convey("When the timestamp is omitted", func() {
			w := do(mux, http.MethodPost, "/api/submit",
				`{"username":"erin","total_crossings":0,"counts_per_minute":0,"session_duration_seconds":5}`)

			Convey("Then zero values are accepted", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
			})
		})

		Convey("When payloads are malformed", func() {
			cases := []struct {
				payload string
				want    string
			}{
				{`not json`, "bad_request"},
				{`[1,2]`, "bad_request"},
				{`{"total_crossings":1,"counts_per_minute":1,"session_duration_seconds":1}`, "missing field: username"},
				{`{"username":"x","counts_per_minute":1,"session_duration_seconds":1}`, "missing field: total_crossings"},
				{`{"username":"x","total_crossings":1,"session_duration_seconds":1}`, "missing field: counts_per_minute"},
				{`{"username":"x","total_crossings":1,"counts_per_minute":1}`, "missing field: session_duration_seconds"},
				{`{"username":"x","total_crossings":-1,"counts_per_minute":1,"session_duration_seconds":1}`, "total_crossings"},
				{`{"username":" ","total_crossings":1,"counts_per_minute":1,"session_duration_seconds":1}`, "username"},
				{`{"username":"x","total_crossings":1,"counts_per_minute":-2,"session_duration_seconds":1}`, "counts_per_minute"},
				{`{"username":"x","total_crossings":1,"counts_per_minute":1,"session_duration_seconds":0}`, "session_duration_seconds"},
				{`{"username":"x","total_crossings":1.5,"counts_per_minute":1,"session_duration_seconds":1}`, "bad_request"},
				{`{"username":"x","timestamp":"yesterday","total_crossings":1,"counts_per_minute":1,"session_duration_seconds":1}`, "bad_request"},
			}

			Convey("Then every one is rejected with 400 and nothing is stored", func() {
				for _, tc := range cases {
					w := do(mux, http.MethodPost, "/api/submit", tc.payload)
					So(w.Code, ShouldEqual, http.StatusBadRequest)
					body := decode[errorBody](w)
					So(body.Code+" "+body.Message, ShouldContainSubstring, tc.want)
				}
				g := decode[types.GlobalStats](do(mux, http.MethodGet, "/api/stats", ""))
				So(g.TotalSessions, ShouldEqual, 0)
			})
		})

		Convey("When the body exceeds the cap", func() {
			big := `{"username":"` + strings.Repeat("a", 1024) + `","total_crossings":1,"counts_per_minute":1,"session_duration_seconds":1}`
			w := do(mux, http.MethodPost, "/api/submit", big)

			Convey("Then 413 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})

		Convey("When GET is used on submit", func() {
			w := do(mux, http.MethodGet, "/api/submit", "")

			Convey("Then 405 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, http.MethodPost)
			})
		})
	})
}

func TestCORS(t *testing.T) {
	Convey("Given an API restricted to one origin", t, func() {
		mux, svc := newMux([]api.Option{api.WithAllowedOrigins([]string{"http://localhost:3000"})})
		defer svc.Stop()

		Convey("When a preflight request arrives", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/submit", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is answered with 204 and CORS headers", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://localhost:3000")
				So(w.Header().Get("Access-Control-Allow-Methods"), ShouldContainSubstring, "POST")
			})
		})

		Convey("When a foreign origin calls", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			req.Header.Set("Origin", "http://evil.example")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then no allow-origin header is set", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
			})
		})
	})

	Convey("Given the default wildcard origin", t, func() {
		mux, svc := newMux(nil)
		defer svc.Stop()

		req := httptest.NewRequest(http.MethodGet, "/api/rankings", nil)
		req.Header.Set("Origin", "http://anywhere.example")
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
	})
}

// failingDeps answers every call with err.
type failingDeps struct{ err error }

func (f failingDeps) Rankings(context.Context, int) (types.Rankings, error) {
	return types.Rankings{}, f.err
}

func (f failingDeps) MaxRankings() int { return 50 }

func (f failingDeps) UserStats(context.Context, string) (types.UserStats, error) {
	return types.UserStats{}, f.err
}

func (f failingDeps) GlobalStats(context.Context) (types.GlobalStats, error) {
	return types.GlobalStats{}, f.err
}

func (f failingDeps) Submit(context.Context, model.Session) (model.Session, error) {
	return model.Session{}, f.err
}

func (f failingDeps) Health(context.Context) (service.Health, error) {
	return service.Health{Status: "unhealthy"}, f.err
}

func TestStoreFailures(t *testing.T) {
	Convey("Given dependencies whose store is broken", t, func() {
		mux := http.NewServeMux()
		api.NewServer(failingDeps{err: errors.New("disk on fire")}).Register(context.Background(), mux)

		Convey("Then read endpoints answer 500 without leaking the cause", func() {
			for _, target := range []string{"/api/rankings", "/api/stats", "/api/rankings/user/alice"} {
				w := do(mux, http.MethodGet, target, "")
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldNotContainSubstring, "disk on fire")
			}
		})

		Convey("Then submit answers 500", func() {
			w := do(mux, http.MethodPost, "/api/submit",
				`{"username":"x","total_crossings":1,"counts_per_minute":1,"session_duration_seconds":1}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})

	Convey("Given dependencies that are not started", t, func() {
		mux := http.NewServeMux()
		api.NewServer(failingDeps{err: service.ErrNotStarted}).Register(context.Background(), mux)

		w := do(mux, http.MethodGet, "/api/stats", "")
		So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
	})
}
