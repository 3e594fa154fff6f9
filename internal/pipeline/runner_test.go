package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollweight/internal/config"
	"pollweight/internal/logger"
	"pollweight/internal/models"
	"pollweight/internal/reference"
)

const testReference = `provincia,sexo,edad_rango,poblacion
CORDOBA,F,16-29,600
CORDOBA,M,16-29,400
`

const waveMay = `Fecha,Encuesta,Estrato,Sexo,Edad,Imagen del Candidato,Voto,Voto Anterior
2023-05-02,1,cord,fe,20,60,candidato a,Candidato B
2023-05-02,2,Córdoba,F,25,40,Candidato B,Candidato B
2023-05-03,3,cordoba,mu,22,80,Candidato A,Candidato A
2023-05-03,4,CORDOBA,masculino,24,20,Candidato A,Candidato A
2023-05-03,4,CORDOBA,masculino,24,20,Candidato A,Candidato A
2023-05-03,5,CORDOBA,F,,50,Candidato B,
`

// June has a respondent in a cell the reference does not cover.
const waveJune = `Fecha,Encuesta,Estrato,Sexo,Edad,Imagen del Candidato,Voto,Voto Anterior
2023-06-01,1,cordoba,F,20,60,Candidato A,Candidato B
2023-06-01,2,mendoza,M,40,60,Candidato A,Candidato B
`

func setup(t *testing.T, waves map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	for name, content := range waves {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	ref := filepath.Join(dir, "censo.csv")
	require.NoError(t, os.WriteFile(ref, []byte(testReference), 0644))

	cfg := config.DefaultConfig()
	cfg.Tracking.InputDir = dir
	cfg.Weighting.ReferenceFile = ref
	cfg.Output.Dir = filepath.Join(dir, "output")
	cfg.Advanced.Workers = 2

	return cfg
}

func runAll(t *testing.T, cfg *config.Config) (*Runner, *Run, error) {
	t.Helper()

	runner, err := NewRunner(cfg, logger.Discard())
	require.NoError(t, err)

	waves, err := runner.Discover()
	require.NoError(t, err)

	run, err := runner.Run(context.Background(), waves)

	return runner, run, err
}

func TestRun_WeightsWave(t *testing.T) {
	cfg := setup(t, map[string]string{"encuestas_2023-05.csv": waveMay})

	_, run, err := runAll(t, cfg)
	require.NoError(t, err)
	require.Len(t, run.Waves, 1)

	wave := run.Waves[0]
	require.NoError(t, wave.Err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 6, wave.Batch.Stats.TotalRows)
	assert.Equal(t, 4, wave.Batch.Stats.ActiveRows)
	assert.Equal(t, 1, wave.Batch.Stats.Excluded[models.ExcludeDuplicate])
	assert.Equal(t, 1, wave.Batch.Stats.Excluded[models.ExcludeMissingField])

	female := models.Cell{Province: "CORDOBA", Sex: "F", AgeGroup: "16-29"}
	male := models.Cell{Province: "CORDOBA", Sex: "M", AgeGroup: "16-29"}

	w, ok := wave.Weights.WeightOf(female)
	require.True(t, ok)
	assert.InDelta(t, 1.2, w, 1e-12)

	w, ok = wave.Weights.WeightOf(male)
	require.True(t, ok)
	assert.InDelta(t, 0.8, w, 1e-12)
	assert.InDelta(t, 1.0, wave.Weights.Coverage, 1e-12)

	for _, r := range wave.Batch.Records {
		if r.Excluded {
			assert.Zero(t, r.Weight)
		}
	}
}

func TestRun_PartialFailure(t *testing.T) {
	cfg := setup(t, map[string]string{
		"encuestas_2023-06.csv": waveJune,
		"encuestas_2023-05.csv": waveMay,
	})

	_, run, err := runAll(t, cfg)
	require.NoError(t, err)
	require.Len(t, run.Waves, 2)

	assert.Equal(t, "2023-05", run.Waves[0].Wave.Label)
	assert.True(t, run.Waves[0].OK())

	june := run.Waves[1]
	assert.Equal(t, "2023-06", june.Wave.Label)
	require.ErrorIs(t, june.Err, reference.ErrUnmappedCell)

	var ue *reference.UnmappedCellError
	require.ErrorAs(t, june.Err, &ue)
	assert.Equal(t, "MENDOZA", ue.Cell.Province)

	assert.Len(t, run.Failed(), 1)
	assert.Equal(t, []string{"2023-05"}, run.Labels())
	assert.Len(t, run.Records(), 6)
}

func TestRun_AllWavesFailed(t *testing.T) {
	cfg := setup(t, map[string]string{"encuestas_2023-06.csv": waveJune})

	_, run, err := runAll(t, cfg)
	require.ErrorIs(t, err, ErrAllWavesFailed)
	require.NotNil(t, run)
	assert.Len(t, run.Failed(), 1)
}

func TestRun_MissingReference(t *testing.T) {
	cfg := setup(t, map[string]string{"encuestas_2023-05.csv": waveMay})
	cfg.Weighting.ReferenceFile = filepath.Join(t.TempDir(), "missing.csv")

	_, run, err := runAll(t, cfg)
	require.Error(t, err)
	assert.Nil(t, run)
}

func TestRun_Idempotent(t *testing.T) {
	cfg := setup(t, map[string]string{"encuestas_2023-05.csv": waveMay})

	runner, first, err := runAll(t, cfg)
	require.NoError(t, err)

	_, second, err := runAll(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Waves[0].Weights, second.Waves[0].Weights)

	firstTables, err := runner.Tables(first)
	require.NoError(t, err)

	secondTables, err := runner.Tables(second)
	require.NoError(t, err)

	require.Len(t, secondTables, len(firstTables))

	for i := range firstTables {
		assert.Equal(t, firstTables[i].Records(), secondTables[i].Records(), firstTables[i].Name)
	}
}

func TestTables_WeightedIntention(t *testing.T) {
	cfg := setup(t, map[string]string{"encuestas_2023-05.csv": waveMay})

	runner, run, err := runAll(t, cfg)
	require.NoError(t, err)

	tables, err := runner.Tables(run)
	require.NoError(t, err)

	byName := make(map[string]int)
	for i, tbl := range tables {
		byName[tbl.Name] = i
	}

	require.Contains(t, byName, "intention_by_wave")
	require.Contains(t, byName, "tracking")

	// F weights 1.2 (one of two intends), M weights 0.8 (both intend).
	v, ok := tables[byName["intention_by_wave"]].Value("mean", "2023-05")
	require.True(t, ok)
	assert.InDelta(t, 2.8/4.0, v, 1e-12)

	v, ok = tables[byName["intention_by_wave_sex"]].Value("mean", "2023-05", "M")
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-12)
}

func TestNewRunner_BadAlias(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Weighting.Aliases.Sex = map[string][]string{"X": {"otro"}}

	_, err := NewRunner(cfg, logger.Discard())
	require.Error(t, err)
}
