package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/okian/guildscore/internal/adapters/http/api"
	"github.com/okian/guildscore/internal/adapters/repository"
	"github.com/okian/guildscore/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Mock implementations for testing
type mockDependencies struct {
	entries  []types.ScoreEntry
	topNErr  error
	rankErr  error
	meta     *repository.Meta
	metaErr  error
	accept   bool
	lastKey  types.SortKey
	lastN    int
	triggers int
}

func (m *mockDependencies) TopN(_ context.Context, key types.SortKey, n int) ([]types.ScoreEntry, error) {
	m.lastKey, m.lastN = key, n
	if m.topNErr != nil {
		return nil, m.topNErr
	}
	if n > len(m.entries) {
		return m.entries, nil
	}
	return m.entries[:n], nil
}

func (m *mockDependencies) Rank(_ context.Context, name string, key types.SortKey) (types.ScoreEntry, error) {
	m.lastKey = key
	if m.rankErr != nil {
		return types.ScoreEntry{}, m.rankErr
	}
	for _, e := range m.entries {
		if e.Name == name {
			return e, nil
		}
	}
	return types.ScoreEntry{}, repository.ErrNotFound
}

func (m *mockDependencies) Snapshot(context.Context) (repository.Meta, error) {
	if m.metaErr != nil {
		return repository.Meta{}, m.metaErr
	}
	if m.meta == nil {
		return repository.Meta{}, repository.ErrNoSnapshot
	}
	return *m.meta, nil
}

func (m *mockDependencies) Trigger() bool {
	m.triggers++
	return m.accept
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]any{"runs": 2}}, 10)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func sampleEntries() []types.ScoreEntry {
	return []types.ScoreEntry{
		{Rank: 1, Name: "Zap", Fights: 3, Attendance: 100, ParseScore: 99, IlvlScore: 97},
		{Rank: 2, Name: "Mendra", Fights: 2, Attendance: 66.67, ParseScore: 88, IlvlScore: 91.2},
		{Rank: 3, Name: "Arrow", Fights: 1, Attendance: 33.33, ParseScore: 12.25, IlvlScore: 20},
	}
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{entries: sampleEntries(), accept: true}
		mux := newMux(deps)

		Convey("Then the health endpoint should expose metrics", func() {
			w := do(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "guildscore_")
		})

		Convey("Then unknown methods should be rejected", func() {
			So(do(mux, http.MethodPost, "/scores").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/refresh").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestScoresHandler_HandleGetScores(t *testing.T) {
	Convey("Given a scoreboard with three characters", t, func() {
		deps := &mockDependencies{entries: sampleEntries()}
		mux := newMux(deps)

		Convey("When requesting scores without parameters", func() {
			w := do(mux, http.MethodGet, "/scores")

			Convey("Then it should return rows sorted by parse with the capped default limit", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				var got []types.ScoreEntry
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got, ShouldHaveLength, 3)
				So(got[0].Name, ShouldEqual, "Zap")
				So(deps.lastKey, ShouldEqual, types.SortByParse)
				So(deps.lastN, ShouldEqual, 10)
			})
		})

		Convey("When requesting a limit and sort key", func() {
			w := do(mux, http.MethodGet, "/scores?limit=2&sort=Attendance")

			Convey("Then both should reach the store", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastKey, ShouldEqual, types.SortByAttendance)
				So(deps.lastN, ShouldEqual, 2)
				So(w.Body.String(), ShouldContainSubstring, `"parse_score":99`)
			})
		})

		Convey("When the limit is invalid", func() {
			for _, target := range []string{"/scores?limit=0", "/scores?limit=-3", "/scores?limit=abc"} {
				w := do(mux, http.MethodGet, target)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `"code":"bad_request"`)
			}
		})

		Convey("When the limit exceeds the maximum", func() {
			w := do(mux, http.MethodGet, "/scores?limit=11")

			Convey("Then it should report limit_exceeded", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "limit_exceeded")
			})
		})

		Convey("When the sort key is unknown", func() {
			w := do(mux, http.MethodGet, "/scores?sort=dps")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "bad_sort")
		})

		Convey("When the store fails", func() {
			deps.topNErr = errors.New("boom")
			w := do(mux, http.MethodGet, "/scores")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestCharacterHandler_HandleGetCharacter(t *testing.T) {
	Convey("Given a scoreboard with three characters", t, func() {
		deps := &mockDependencies{entries: sampleEntries()}
		mux := newMux(deps)

		Convey("When requesting a known character", func() {
			w := do(mux, http.MethodGet, "/scores/Mendra?sort=ilvl")

			Convey("Then it should return that row", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got types.ScoreEntry
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.Name, ShouldEqual, "Mendra")
				So(got.Rank, ShouldEqual, 2)
				So(deps.lastKey, ShouldEqual, types.SortByIlvl)
			})
		})

		Convey("When requesting an unknown character", func() {
			w := do(mux, http.MethodGet, "/scores/Nobody")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, "not_found")
		})

		Convey("When the name is missing", func() {
			So(do(mux, http.MethodGet, "/scores/").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the sort key is unknown", func() {
			So(do(mux, http.MethodGet, "/scores/Zap?sort=hps").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the store fails", func() {
			deps.rankErr = errors.New("boom")
			So(do(mux, http.MethodGet, "/scores/Zap").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestRefreshHandler_HandlePostRefresh(t *testing.T) {
	Convey("Given a refresh endpoint", t, func() {
		deps := &mockDependencies{accept: true}
		mux := newMux(deps)

		Convey("When the trigger is accepted", func() {
			w := do(mux, http.MethodPost, "/refresh")
			So(w.Code, ShouldEqual, http.StatusAccepted)
			So(w.Body.String(), ShouldContainSubstring, `"status":"accepted"`)
			So(deps.triggers, ShouldEqual, 1)
		})

		Convey("When a run is already pending", func() {
			deps.accept = false
			w := do(mux, http.MethodPost, "/refresh")
			So(w.Code, ShouldEqual, http.StatusAccepted)
			So(w.Body.String(), ShouldContainSubstring, `"status":"pending"`)
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats endpoint", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When nothing has been published", func() {
			w := do(mux, http.MethodGet, "/stats")

			Convey("Then snapshot should be null", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"snapshot":null`)
				So(w.Body.String(), ShouldContainSubstring, `"runs":2`)
			})
		})

		Convey("When a snapshot exists", func() {
			deps.meta = &repository.Meta{RunID: "run-1", Guild: "Legal Tender", Characters: 3}
			w := do(mux, http.MethodGet, "/stats")

			Convey("Then its metadata should be included", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"run_id":"run-1"`)
				So(w.Body.String(), ShouldContainSubstring, `"characters":3`)
			})
		})

		Convey("When the snapshot lookup fails", func() {
			deps.metaErr = errors.New("boom")
			So(do(mux, http.MethodGet, "/stats").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestError(t *testing.T) {
	Convey("Given API errors", t, func() {
		cause := errors.New("cause")

		Convey("Then kind and cause should both match", func() {
			err := api.WrapKind("op", api.ErrNotFound, cause)
			So(errors.Is(err, api.ErrNotFound), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "op: not found: cause")
		})

		Convey("Then Wrap should keep nil as nil", func() {
			So(api.Wrap("op", nil), ShouldBeNil)
			So(api.NewKind("op", api.ErrBadRequest).Error(), ShouldEqual, "op: bad request")
		})
	})
}
