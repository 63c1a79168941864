package di

import (
	"testing"

	"github.com/stretchr/testify/require"

	"NewsSignal/internal/domain/models"
	"NewsSignal/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Model.Vectorizer = "../services/model/testdata/vectorizer.json"
	cfg.Model.Classifier = "../services/model/testdata/classifier.json"
	cfg.Logging.Level = "error"
	cfg.Logging.Output = "stderr"
	return cfg
}

func TestInitializePipeline(t *testing.T) {
	p, cleanup, err := InitializePipeline(testConfig(t))
	require.NoError(t, err)
	defer cleanup()

	require.Equal(t, models.LabelUp, p.Predict("Tech company launches new product"))
	require.Equal(t, models.LabelDownOrFlat, p.Predict(""))
}

func TestInitializePipeline_MissingArtifact(t *testing.T) {
	cfg := testConfig(t)
	cfg.Model.Classifier = "does/not/exist.json"
	_, _, err := InitializePipeline(cfg)
	require.Error(t, err)
}

func TestInitializeApp_SQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend.Type = "sqlite"
	cfg.SQLite.Path = ":memory:"
	require.NoError(t, cfg.Validate())

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, app)
}
