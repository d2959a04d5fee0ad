package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/shelterml/boost"
	"github.com/YuminosukeSato/shelterml/dataset"
	"github.com/YuminosukeSato/shelterml/features"
	"github.com/YuminosukeSato/shelterml/pkg/config"
	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
	"github.com/YuminosukeSato/shelterml/pkg/log"
)

var (
	sexes    = []string{"Neutered Male", "Spayed Female", "Intact Male", "Intact Female", "Unknown"}
	breeds   = []string{"Pit Bull Mix", "Domestic Shorthair Mix", "Labrador Retriever/Beagle", "Chihuahua Shorthair Mix"}
	colors   = []string{"Brown/White", "Black", "Orange Tabby", "Blue Tabby/White"}
	outcomes = dataset.OutcomeNames()
)

func writeRaw(t *testing.T, dir string) (trainPath, testPath string) {
	t.Helper()

	var train strings.Builder
	train.WriteString("AnimalID,Name,DateTime,OutcomeType,OutcomeSubtype,AnimalType,SexuponOutcome,AgeuponOutcome,Breed,Color\n")
	for i := 0; i < 60; i++ {
		animal := "Dog"
		if i%2 == 1 {
			animal = "Cat"
		}
		name := fmt.Sprintf("Pet%d", i)
		if i%4 == 0 {
			name = ""
		}
		fmt.Fprintf(&train, "A%03d,%s,2014-%02d-%02d %02d:30:00,%s,,%s,%s,%d years,%s,%s\n",
			i, name, i%12+1, i%28+1, i%24, outcomes[i%5], animal, sexes[i%5], i%5+1,
			quote(breeds[i%4]), quote(colors[i%4]))
	}
	// 性別が不明な行は除外される
	train.WriteString("A999,Odd,2014-01-01 00:00:00,Adoption,,Dog,Bisexual,1 year,Beagle,Black\n")

	var test strings.Builder
	test.WriteString("ID,Name,DateTime,AnimalType,SexuponOutcome,AgeuponOutcome,Breed,Color\n")
	for i := 1; i <= 7; i++ {
		fmt.Fprintf(&test, "%d,,2015-06-%02d 10:00:00,Dog,%s,,%s,%s\n", i, i, sexes[i%5], quote(breeds[i%4]), quote(colors[i%4]))
	}

	trainPath = filepath.Join(dir, "train.csv")
	testPath = filepath.Join(dir, "test.csv")
	require.NoError(t, os.WriteFile(trainPath, []byte(train.String()), 0o644))
	require.NoError(t, os.WriteFile(testPath, []byte(test.String()), 0o644))
	return trainPath, testPath
}

func quote(s string) string {
	if strings.Contains(s, ",") {
		return strconv.Quote(s)
	}
	return s
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	p, _ := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(p)

	dir := t.TempDir()
	trainPath, testPath := writeRaw(t, dir)

	params := boost.DefaultParams()
	params.NumRounds = 15
	params.MaxDepth = 3
	params.LearningRate = 0.3

	return &config.Config{
		Paths: config.PathsConfig{
			RawTrain:   trainPath,
			RawTest:    testPath,
			CleanTrain: filepath.Join(dir, "train_clean.csv"),
			CleanTest:  filepath.Join(dir, "test_clean.csv"),
			Manifest:   filepath.Join(dir, "features.yaml"),
			Submission: filepath.Join(dir, "submission.csv"),
			Model:      filepath.Join(dir, "model.json"),
		},
		Features: features.Options{ImputeAge: true},
		Boost:    params,
		Train:    config.TrainConfig{Missing: "error", LogPeriod: 5, ImportanceTopN: 10},
		Log:      config.LogConfig{Level: "info", Format: "json"},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	p, _ := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(p)

	res, err := Run(context.Background(), cfg, "run-test")
	require.NoError(t, err)
	assert.Equal(t, 7, res.TestRows)
	assert.Len(t, res.History[boost.MetricLogLoss], 15)
	assert.Greater(t, res.TrainAccuracy, 0.2)

	require.NotNil(t, res.Confusion)
	r, c := res.Confusion.Dims()
	assert.Equal(t, dataset.NumOutcomes, r)
	assert.Equal(t, dataset.NumOutcomes, c)
	assert.Equal(t, 60.0, mat.Sum(res.Confusion))
	assert.InDelta(t, res.TrainAccuracy, mat.Trace(res.Confusion)/60, 1e-12)
	assert.True(t, p.ContainsMessage("train confusion row"))

	e, ok := p.Find("predicting test rows")
	require.True(t, ok)
	assert.Equal(t, log.PhaseInference, e.Fields[log.PhaseKey])
	assert.Equal(t, log.OperationPredict, e.Fields[log.OperationKey])
	assert.Equal(t, 7, e.Fields[log.SamplesKey])

	m, err := features.ReadManifest(cfg.Paths.Manifest)
	require.NoError(t, err)
	assert.Equal(t, "run-test", m.RunID)
	assert.Equal(t, features.RowCounts{Read: 61, Kept: 60, Dropped: 1}, m.Train)
	assert.Equal(t, features.RowCounts{Read: 7, Kept: 7, Dropped: 0}, m.Test)

	train, err := dataset.ReadTable(cfg.Paths.CleanTrain)
	require.NoError(t, err)
	test, err := dataset.ReadTable(cfg.Paths.CleanTest)
	require.NoError(t, err)
	assert.Equal(t, train.Columns, test.Columns)
	assert.Equal(t, m.Columns, train.Columns)
	assert.NotContains(t, train.IDs, "A999")

	rows := readCSV(t, cfg.Paths.Submission)
	require.Len(t, rows, 8)
	assert.Equal(t, []string{"ID", "Adoption", "Died", "Euthanasia", "Return_to_owner", "Transfer"}, rows[0])
	for i, row := range rows[1:] {
		assert.Equal(t, strconv.Itoa(i+1), row[0])
		sum := 0.0
		for _, cell := range row[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			require.NoError(t, err)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-6)
	}

	loaded, err := boost.Load(cfg.Paths.Model)
	require.NoError(t, err)
	assert.Equal(t, len(train.Columns), loaded.NumFeature)
}

func TestBuildFeaturesRejectsCleanedInput(t *testing.T) {
	cfg := testConfig(t)
	_, err := BuildFeatures(context.Background(), cfg, "first")
	require.NoError(t, err)

	cfg.Paths.RawTrain = cfg.Paths.CleanTrain
	_, err = BuildFeatures(context.Background(), cfg, "second")
	var se *perrors.SchemaError
	require.True(t, perrors.As(err, &se), "got %v", err)
}

func TestTrainAndPredictManifestMismatch(t *testing.T) {
	cfg := testConfig(t)
	m, err := BuildFeatures(context.Background(), cfg, "run")
	require.NoError(t, err)

	m.Columns = append(m.Columns, "Breed_Poodle")
	require.NoError(t, features.WriteManifest(cfg.Paths.Manifest, m))

	_, err = TrainAndPredict(context.Background(), cfg)
	var sm *perrors.SchemaMismatchError
	require.True(t, perrors.As(err, &sm), "got %v", err)
	assert.Equal(t, []string{"Breed_Poodle"}, sm.OnlyLeft)
}

func TestTrainAndPredictMissingPolicy(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	cfg.Paths.CleanTrain = filepath.Join(dir, "train_clean.csv")
	cfg.Paths.CleanTest = filepath.Join(dir, "test_clean.csv")
	cfg.Paths.Manifest = filepath.Join(dir, "absent.yaml")
	cfg.Paths.Model = ""

	var train strings.Builder
	train.WriteString("ID,OutcomeType,a,b\n")
	for i := 0; i < 20; i++ {
		b := strconv.Itoa(i % 3)
		if i%7 == 0 {
			b = ""
		}
		fmt.Fprintf(&train, "A%d,%s,%d,%s\n", i, outcomes[i%5], i%5, b)
	}
	require.NoError(t, os.WriteFile(cfg.Paths.CleanTrain, []byte(train.String()), 0o644))
	require.NoError(t, os.WriteFile(cfg.Paths.CleanTest, []byte("ID,a,b\n1,0,1\n2,4,\n"), 0o644))

	_, err := TrainAndPredict(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorContains(t, err, "empty cells")

	cfg.Train.Missing = "fill"
	cfg.Train.FillValue = 7691
	_, err = TrainAndPredict(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Train.Missing = "native"
	res, err := TrainAndPredict(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TestRows)
}

func TestTrainAndPredictColumnMismatch(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	cfg.Paths.CleanTrain = filepath.Join(dir, "train_clean.csv")
	cfg.Paths.CleanTest = filepath.Join(dir, "test_clean.csv")
	cfg.Paths.Manifest = ""

	require.NoError(t, os.WriteFile(cfg.Paths.CleanTrain, []byte("ID,OutcomeType,Breed_Pit Bull,Male\nA1,Adoption,1,0\nA2,Died,0,1\n"), 0o644))
	require.NoError(t, os.WriteFile(cfg.Paths.CleanTest, []byte("ID,Breed_Pit.Bull\n1,1\n"), 0o644))

	_, err := TrainAndPredict(context.Background(), cfg)
	var sm *perrors.SchemaMismatchError
	require.True(t, perrors.As(err, &sm), "got %v", err)
	assert.Equal(t, []string{"Male"}, sm.OnlyLeft)
	assert.Empty(t, sm.OnlyRight)
}

func TestTrainAndPredictCancelled(t *testing.T) {
	cfg := testConfig(t)
	_, err := BuildFeatures(context.Background(), cfg, "run")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = TrainAndPredict(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}
