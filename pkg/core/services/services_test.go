package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rville-tennis/mixer/internal/config"
	"github.com/rville-tennis/mixer/pkg/core/model"
	"github.com/rville-tennis/mixer/pkg/core/scheduler"
	"github.com/rville-tennis/mixer/pkg/core/search"
	"github.com/rville-tennis/mixer/pkg/core/solver"
	"github.com/rville-tennis/mixer/pkg/db"
	"github.com/rville-tennis/mixer/pkg/export/csvexport"
)

// mockStore implements db.SweepStore and db.HistoryStore
type mockStore struct {
	sweeps []db.Sweep
	combos []db.ComboResult

	insertSweepErr error
	insertComboErr error
	listErr        error
	getCombosErr   error
}

func (m *mockStore) InsertSweep(ctx context.Context, sweep *db.Sweep) error {
	if m.insertSweepErr != nil {
		return m.insertSweepErr
	}
	m.sweeps = append(m.sweeps, *sweep)
	return nil
}

func (m *mockStore) InsertComboResult(ctx context.Context, result *db.ComboResult) error {
	if m.insertComboErr != nil {
		return m.insertComboErr
	}
	m.combos = append(m.combos, *result)
	return nil
}

func (m *mockStore) ListSweeps(ctx context.Context, limit int) ([]db.Sweep, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.sweeps) > limit {
		return m.sweeps[:limit], nil
	}
	return m.sweeps, nil
}

func (m *mockStore) GetSweep(ctx context.Context, id string) (*db.Sweep, error) {
	for i := range m.sweeps {
		if m.sweeps[i].ID == id {
			return &m.sweeps[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) GetComboResults(ctx context.Context, sweepID string) ([]db.ComboResult, error) {
	if m.getCombosErr != nil {
		return nil, m.getCombosErr
	}
	var out []db.ComboResult
	for _, c := range m.combos {
		if c.SweepID == sweepID {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockRecorder struct {
	trials map[string]int
	combos map[string]int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{trials: make(map[string]int), combos: make(map[string]int)}
}

func (r *mockRecorder) ObserveTrial(status string, elapsed time.Duration) { r.trials[status]++ }
func (r *mockRecorder) ObserveCombo(outcome string)                    { r.combos[outcome]++ }

func intPtr(v int) *int {
	return &v
}

// solvableConfig lets four men and four women play every slot of a short day
func solvableConfig(outDir string) *config.Config {
	streak := 0
	return &config.Config{
		TimeSlots: []string{"t1", "t2", "t3"},
		Rules:     config.RulesConfig{NoRepeat: "same-gender", StreakLength: &streak},
		OutputDir: outDir,
	}
}

func fourByFour() SweepRequest {
	return SweepRequest{
		Men:       search.Range{Min: 4, Max: 4},
		Women:     search.Range{Min: 4, Max: 4},
		Courts:    2,
		Overrides: Overrides{Seed: 3},
	}
}

func TestSearchOptions(t *testing.T) {
	streak := 2
	cfg := &config.Config{
		TimeSlots:          []string{"9am", "10am"},
		Fairness:           &config.Fairness{Min: 1, Max: 2},
		ImbalanceThreshold: intPtr(4),
		Mode:               "townCourt",
		TownCourtMax:       1,
		CourtModel:         "explicit",
		AllowEmptyCourts:   true,
		Rules:              config.RulesConfig{NoRepeat: "off", StreakLength: &streak},
		Objective:          "none",
		AcceptFeasible:     true,
		TrialTimeout:       5 * time.Second,
		Parallelism:        2,
		Accommodations:     []config.Accommodation{{Player: "W2", Slots: []string{"10am"}}},
	}

	opts, err := SearchOptions(cfg, Overrides{Seed: 9, Parallelism: 4, Accommodations: true})
	require.NoError(t, err)

	assert.Equal(t, model.NewTimeSlots([]string{"9am", "10am"}), opts.Slots)
	assert.Equal(t, scheduler.Band{Min: 1, Max: 2}, opts.Band)
	require.NotNil(t, opts.ImbalanceThreshold)
	assert.Equal(t, 4, *opts.ImbalanceThreshold)
	assert.Equal(t, scheduler.ModeTownCourt, opts.Mode)
	assert.Equal(t, 1, opts.TownCourtMax)
	assert.Equal(t, scheduler.CourtsExplicit, opts.CourtModel)
	assert.True(t, opts.AllowEmptyCourts)
	assert.Equal(t, scheduler.Rules{NoRepeat: scheduler.NoRepeatOff, StreakLength: 2}, opts.Rules)
	assert.Equal(t, scheduler.ObjectiveNone, opts.Objective)
	assert.True(t, opts.AcceptFeasible)
	assert.Equal(t, 5*time.Second, opts.TrialTimeout)
	assert.Equal(t, 4, opts.Parallelism)
	assert.Equal(t, uint64(9), opts.Seed)
	assert.Equal(t, []scheduler.Accommodation{{Player: model.Player{Gender: model.GenderWoman, ID: 2}, Slots: []string{"10am"}}}, opts.Accommodations)
}

func TestSearchOptions_Defaults(t *testing.T) {
	opts, err := SearchOptions(config.Default(), Overrides{})
	require.NoError(t, err)

	assert.Nil(t, opts.Slots)
	assert.Equal(t, scheduler.DefaultBand, opts.Band)
	assert.Equal(t, scheduler.ModePlain, opts.Mode)
	assert.Equal(t, scheduler.DefaultRules(), opts.Rules)
	assert.Equal(t, scheduler.ObjectiveLateness, opts.Objective)
	assert.Nil(t, opts.ImbalanceThreshold)
	assert.Empty(t, opts.Accommodations)
}

func TestSearchOptions_ZeroImbalanceThresholdSurvives(t *testing.T) {
	cfg := config.Default()
	cfg.ImbalanceThreshold = intPtr(0)

	opts, err := SearchOptions(cfg, Overrides{})
	require.NoError(t, err)
	require.NotNil(t, opts.ImbalanceThreshold)
	assert.Equal(t, 0, *opts.ImbalanceThreshold)
}

func TestSearchOptions_TownCourtOverride(t *testing.T) {
	opts, err := SearchOptions(config.Default(), Overrides{TownCourt: true})
	require.NoError(t, err)
	assert.Equal(t, scheduler.ModeTownCourt, opts.Mode)
}

func TestSearchOptions_AccommodationsOnlyWhenRequested(t *testing.T) {
	cfg := config.Default()
	cfg.Accommodations = []config.Accommodation{{Player: "M1", Slots: []string{"9am"}}}

	opts, err := SearchOptions(cfg, Overrides{})
	require.NoError(t, err)
	assert.Empty(t, opts.Accommodations)

	opts, err = SearchOptions(cfg, Overrides{Accommodations: true})
	require.NoError(t, err)
	assert.Len(t, opts.Accommodations, 1)
}

func TestSearchOptions_InvalidAccommodations(t *testing.T) {
	tests := []struct {
		name   string
		acc    config.Accommodation
		errMsg string
	}{
		{name: "bad player", acc: config.Accommodation{Player: "X1", Slots: []string{"9am"}}, errMsg: "failed to parse accommodation"},
		{name: "unknown slot", acc: config.Accommodation{Player: "M1", Slots: []string{"midnight"}}, errMsg: "unknown time slot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Accommodations = []config.Accommodation{tt.acc}
			_, err := SearchOptions(cfg, Overrides{Accommodations: true})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRunSweep_WritesAndPersists(t *testing.T) {
	dir := t.TempDir()
	store := &mockStore{}
	recorder := newMockRecorder()

	report, err := RunSweep(context.Background(), solver.NewPBFactory(), store, recorder, solvableConfig(dir), zap.NewNop(), fourByFour())
	require.NoError(t, err)

	require.Len(t, report.Result.Combos, 1)
	assert.Equal(t, search.ComboSolved, report.Result.Combos[0].Status)
	assert.Equal(t, []string{filepath.Join(dir, "4men_4women_2courts.csv")}, report.Files)
	_, err = os.Stat(report.Files[0])
	require.NoError(t, err)

	require.Len(t, store.sweeps, 1)
	assert.Equal(t, report.SweepID, store.sweeps[0].ID)
	assert.Equal(t, 2, store.sweeps[0].Courts)
	assert.Equal(t, uint64(3), store.sweeps[0].Seed)
	assert.Equal(t, "plain", store.sweeps[0].Mode)

	require.Len(t, store.combos, 1)
	combo := store.combos[0]
	assert.Equal(t, report.SweepID, combo.SweepID)
	assert.Equal(t, "solved", combo.Status)
	assert.Equal(t, 6, combo.MatchesCount)
	assert.Equal(t, 1, combo.Trials)
	require.Len(t, combo.Rows, 6)
	assert.Equal(t, combo.ID, combo.Rows[0].ComboID)

	assert.Equal(t, 1, recorder.trials["OPTIMAL"])
	assert.Equal(t, 1, recorder.combos["solved"])
}

func TestRunSweep_WithoutStore(t *testing.T) {
	dir := t.TempDir()

	report, err := RunSweep(context.Background(), solver.NewPBFactory(), nil, nil, solvableConfig(dir), zap.NewNop(), fourByFour())
	require.NoError(t, err)
	assert.Len(t, report.Files, 1)
	assert.NotEmpty(t, report.SweepID)
}

func TestRunSweep_OutputDirOverride(t *testing.T) {
	dir := t.TempDir()
	req := fourByFour()
	req.OutputDir = filepath.Join(dir, "override")

	report, err := RunSweep(context.Background(), solver.NewPBFactory(), nil, nil, solvableConfig(dir), zap.NewNop(), req)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, req.OutputDir, filepath.Dir(report.Files[0]))
}

func TestRunSweep_CourtsFromConfig(t *testing.T) {
	cfg := solvableConfig(t.TempDir())
	cfg.Courts = 2
	req := fourByFour()
	req.Courts = 0

	report, err := RunSweep(context.Background(), solver.NewPBFactory(), nil, nil, cfg, zap.NewNop(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Result.Combos[0].Courts)
}

func TestRunSweep_MissingCourts(t *testing.T) {
	req := fourByFour()
	req.Courts = 0

	_, err := RunSweep(context.Background(), solver.NewPBFactory(), nil, nil, solvableConfig(t.TempDir()), zap.NewNop(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "courts")
}

func TestRunSweep_SaveSweepFails(t *testing.T) {
	store := &mockStore{insertSweepErr: errors.New("connection refused")}

	_, err := RunSweep(context.Background(), solver.NewPBFactory(), store, nil, solvableConfig(t.TempDir()), zap.NewNop(), fourByFour())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save sweep")
}

func TestRunSweep_SaveComboFails(t *testing.T) {
	store := &mockStore{insertComboErr: errors.New("connection reset")}

	report, err := RunSweep(context.Background(), solver.NewPBFactory(), store, nil, solvableConfig(t.TempDir()), zap.NewNop(), fourByFour())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.NotNil(t, report)
	assert.Len(t, report.Files, 1, "csv output is still written")
}

func TestRunSweep_SkippedCombosAreNotPersisted(t *testing.T) {
	cfg := solvableConfig(t.TempDir())
	cfg.ImbalanceThreshold = intPtr(1)
	store := &mockStore{}
	req := fourByFour()
	req.Men = search.Range{Min: 2, Max: 2}

	report, err := RunSweep(context.Background(), solver.NewPBFactory(), store, nil, cfg, zap.NewNop(), req)
	require.NoError(t, err)
	require.Len(t, report.Result.Combos, 1)
	assert.Equal(t, search.ComboSkipped, report.Result.Combos[0].Status)
	assert.Empty(t, store.combos)
	assert.Empty(t, report.Files)
}

func TestSolveOne(t *testing.T) {
	dir := t.TempDir()
	recorder := newMockRecorder()

	report, err := SolveOne(context.Background(), solver.NewPBFactory(), recorder, solvableConfig(dir), zap.NewNop(),
		SolveRequest{Men: 4, Women: 4, Courts: 2, Matches: 6})
	require.NoError(t, err)
	assert.Equal(t, solver.StatusOptimal, report.Trial.Status)
	assert.Equal(t, filepath.Join(dir, "4men_4women_2courts.csv"), report.File)
	assert.Equal(t, 1, recorder.trials["OPTIMAL"])
}

func TestSolveOne_Infeasible(t *testing.T) {
	cfg := config.Default()
	cfg.TimeSlots = []string{"t1"}
	cfg.OutputDir = t.TempDir()

	report, err := SolveOne(context.Background(), solver.NewPBFactory(), nil, cfg, zap.NewNop(),
		SolveRequest{Men: 4, Women: 4, Courts: 1})
	require.NoError(t, err)
	assert.Equal(t, solver.StatusInfeasible, report.Trial.Status)
	assert.Empty(t, report.File)
}

func TestSolveOne_BuildError(t *testing.T) {
	_, err := SolveOne(context.Background(), solver.NewPBFactory(), nil, solvableConfig(t.TempDir()), zap.NewNop(),
		SolveRequest{Men: 1, Women: 4, Courts: 2})
	require.Error(t, err)

	var buildErr *scheduler.ModelBuildError
	assert.True(t, errors.As(err, &buildErr))
}

func TestListHistory(t *testing.T) {
	store := &mockStore{
		sweeps: []db.Sweep{{ID: "s2", Courts: 2}, {ID: "s1", Courts: 3}},
		combos: []db.ComboResult{
			{ID: "c1", SweepID: "s2", Status: "solved"},
			{ID: "c2", SweepID: "s2", Status: "solved"},
			{ID: "c3", SweepID: "s2", Status: "no-solution"},
			{ID: "c4", SweepID: "s1", Status: "error"},
		},
	}

	entries, err := ListHistory(context.Background(), store, zap.NewNop(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "s2", entries[0].Sweep.ID)
	assert.Equal(t, 3, entries[0].Total)
	assert.Equal(t, map[string]int{"solved": 2, "no-solution": 1}, entries[0].Counts)
	assert.Equal(t, map[string]int{"error": 1}, entries[1].Counts)

	entries, err = ListHistory(context.Background(), store, zap.NewNop(), 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestListHistory_Errors(t *testing.T) {
	_, err := ListHistory(context.Background(), &mockStore{}, zap.NewNop(), 0)
	assert.Error(t, err)

	_, err = ListHistory(context.Background(), &mockStore{listErr: errors.New("boom")}, zap.NewNop(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch sweeps")

	store := &mockStore{sweeps: []db.Sweep{{ID: "s1"}}, getCombosErr: errors.New("boom")}
	_, err = ListHistory(context.Background(), store, zap.NewNop(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s1")
}

func TestExportSweep(t *testing.T) {
	dir := t.TempDir()
	store := &mockStore{
		sweeps: []db.Sweep{{ID: "s1", Courts: 2}},
		combos: []db.ComboResult{
			{ID: "c1", SweepID: "s1", Men: 4, Women: 4, Status: "solved", Rows: []db.ScheduleRow{
				{ComboID: "c1", Position: 0, Slot: "9am", Court: 1, ManA: 1, ManB: 2, WomanA: 3, WomanB: 4},
			}},
			{ID: "c2", SweepID: "s1", Men: 5, Women: 4, Status: "no-solution"},
		},
	}

	files, err := ExportSweep(context.Background(), store, config.Default(), zap.NewNop(), "s1", dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "4men_4women_2courts.csv")}, files)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "9am,1,1,2,3,4")
}

func TestExportSweep_NotFound(t *testing.T) {
	_, err := ExportSweep(context.Background(), &mockStore{}, config.Default(), zap.NewNop(), "missing", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrNotFound))
}

func TestExportSweep_UnknownSlot(t *testing.T) {
	store := &mockStore{
		sweeps: []db.Sweep{{ID: "s1", Courts: 1}},
		combos: []db.ComboResult{{ID: "c1", SweepID: "s1", Status: "solved", Rows: []db.ScheduleRow{{Slot: "t9"}}}},
	}

	_, err := ExportSweep(context.Background(), store, config.Default(), zap.NewNop(), "s1", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "t9")
}

func TestExportSweep_TownCourtFollowsStoredMode(t *testing.T) {
	store := &mockStore{}
	req := fourByFour()
	req.TownCourt = true
	cfg := solvableConfig(t.TempDir())

	report, err := RunSweep(context.Background(), solver.NewPBFactory(), store, nil, cfg, zap.NewNop(), req)
	require.NoError(t, err)
	require.Len(t, store.sweeps, 1)
	assert.Equal(t, "townCourt", store.sweeps[0].Mode)

	// exported under a plain configuration
	dir := t.TempDir()
	files, err := ExportSweep(context.Background(), store, cfg, zap.NewNop(), report.SweepID, dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	header, _, _ := strings.Cut(string(data), "\n")
	assert.Contains(t, header, csvexport.TownCourtColumn)
}

func TestExportSweep_PlainSweepUnderTownCourtConfig(t *testing.T) {
	store := &mockStore{
		sweeps: []db.Sweep{{ID: "s1", Courts: 1, Mode: "plain"}},
		combos: []db.ComboResult{{ID: "c1", SweepID: "s1", Men: 2, Women: 2, Status: "solved", Rows: []db.ScheduleRow{
			{ComboID: "c1", Slot: "9am", Court: 1, ManA: 1, ManB: 2, WomanA: 1, WomanB: 2},
		}}},
	}
	cfg := config.Default()
	cfg.Mode = "townCourt"

	files, err := ExportSweep(context.Background(), store, cfg, zap.NewNop(), "s1", t.TempDir())
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), csvexport.TownCourtColumn)
}

func TestExportSweep_SweepWithoutModeUsesRows(t *testing.T) {
	store := &mockStore{
		sweeps: []db.Sweep{{ID: "s1", Courts: 1}},
		combos: []db.ComboResult{{ID: "c1", SweepID: "s1", Men: 2, Women: 2, Status: "solved", Rows: []db.ScheduleRow{
			{ComboID: "c1", Slot: "9am", Court: 1, ManA: 1, ManB: 2, WomanA: 1, WomanB: 2, TownCourt: true},
		}}},
	}

	files, err := ExportSweep(context.Background(), store, config.Default(), zap.NewNop(), "s1", t.TempDir())
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), csvexport.TownCourtColumn)
	assert.Contains(t, string(data), "9am,1,1,2,1,2,yes")
}
