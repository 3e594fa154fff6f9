package normalizer

import (
	"errors"
	"testing"

	"pollweight/internal/models"
	"pollweight/internal/sanitizer"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()

	s, err := sanitizer.New(sanitizer.DefaultMinAge, sanitizer.DefaultMaxAge)
	if err != nil {
		t.Fatalf("sanitizer.New failed: %v", err)
	}

	return NewProcessor(NewTransformer(Provinces(), Sexes(), "Candidato A"), s, models.DefaultAgeGroups())
}

func row(line int, id, province, sex, age string) models.RawRow {
	return models.RawRow{
		Line:      line,
		Date:      "2023-05-10",
		SurveyID:  id,
		Province:  province,
		Sex:       sex,
		Age:       age,
		Image:     "60",
		Vote:      "candidato a",
		PriorVote: "candidato b",
	}
}

func TestNewProcessor(t *testing.T) {
	p := newTestProcessor(t)
	if p == nil {
		t.Fatal("NewProcessor returned nil")
	}
}

func TestProcessor_Process(t *testing.T) {
	p := newTestProcessor(t)
	wave := models.Wave{Label: "2023-05"}

	incomplete := row(6, "E1", "salta", "m", "50")
	incomplete.Vote = ""

	rows := []models.RawRow{
		row(2, "E1", "cord", "fe", "15"),
		row(3, "E1", "Córdoba", "mu", "30"),
		row(4, "E1", "06", "F", "200"),
		row(5, "E1", "CBA", "masculino", ""),
		row(7, "E1", "cord", "fe", "40"),
		row(8, "E1", "cord", "fe", "40"),
		incomplete,
	}

	batch, err := p.Process(wave, rows)
	if err != nil {
		t.Fatalf("Process returned unexpected error: %v", err)
	}

	if len(batch.Records) != len(rows) {
		t.Fatalf("Records = %d, want %d (excluded rows are kept)", len(batch.Records), len(rows))
	}

	active := batch.Active()
	if len(active) != 3 {
		t.Fatalf("Active = %d, want 3", len(active))
	}

	wantAges := []int{30, 35, 40}
	for i, r := range active {
		if r.Age != wantAges[i] {
			t.Errorf("active[%d].Age = %d, want %d", i, r.Age, wantAges[i])
		}

		if r.Province != "CORDOBA" {
			t.Errorf("active[%d].Province = %s, want CORDOBA", i, r.Province)
		}

		if r.Intention != 1 {
			t.Errorf("active[%d].Intention = %d, want 1", i, r.Intention)
		}
	}

	if !active[1].AgeImputed || active[1].AgeGroup != "30-44" {
		t.Errorf("imputed record = %+v, want imputed age in 30-44", active[1])
	}

	if batch.Stats.MedianAge != 35 {
		t.Errorf("MedianAge = %v, want 35", batch.Stats.MedianAge)
	}

	wantExcluded := map[string]int{
		models.ExcludeAgeRange:     2,
		models.ExcludeDuplicate:    1,
		models.ExcludeMissingField: 1,
	}

	for reason, n := range wantExcluded {
		if batch.Stats.Excluded[reason] != n {
			t.Errorf("Excluded[%s] = %d, want %d", reason, batch.Stats.Excluded[reason], n)
		}
	}

	if batch.Stats.ActiveRows != 3 || batch.Stats.ImputedAges != 1 || batch.Stats.ExcludedRows() != 4 {
		t.Errorf("Stats = %+v", batch.Stats)
	}
}

func TestProcessor_Process_NormalizationError(t *testing.T) {
	p := newTestProcessor(t)

	_, err := p.Process(models.Wave{Label: "2023-05"}, []models.RawRow{
		row(2, "E1", "cord", "fe", "30"),
		row(3, "E1", "la", "fe", "31"),
	})
	if !errors.Is(err, ErrNormalization) {
		t.Fatalf("Process error = %v, want ErrNormalization", err)
	}

	var ne *NormalizationError
	if !errors.As(err, &ne) || ne.Line != 3 || ne.Raw != "la" {
		t.Errorf("NormalizationError = %+v, want line 3 raw la", ne)
	}
}

func TestProcessor_Process_IncompleteRowIsNotNormalized(t *testing.T) {
	p := newTestProcessor(t)

	broken := row(3, "E1", "???", "??", "31")
	broken.Date = ""

	batch, err := p.Process(models.Wave{Label: "2023-05"}, []models.RawRow{
		row(2, "E1", "cord", "fe", "30"),
		broken,
	})
	if err != nil {
		t.Fatalf("Process returned unexpected error: %v", err)
	}

	if batch.Records[1].ExcludeReason != models.ExcludeMissingField {
		t.Errorf("ExcludeReason = %q, want missing_field", batch.Records[1].ExcludeReason)
	}
}

func TestProcessor_Process_InsufficientData(t *testing.T) {
	p := newTestProcessor(t)

	_, err := p.Process(models.Wave{Label: "2023-05"}, []models.RawRow{
		row(2, "E1", "cord", "fe", ""),
		row(3, "E2", "cord", "mu", "n/a"),
	})
	if !errors.Is(err, sanitizer.ErrInsufficientData) {
		t.Fatalf("Process error = %v, want ErrInsufficientData", err)
	}
}

func TestProcessor_Process_NonFiniteImageIsExcluded(t *testing.T) {
	p := newTestProcessor(t)

	nan := row(3, "E2", "cord", "mu", "31")
	nan.Image = "NaN"

	batch, err := p.Process(models.Wave{Label: "2023-05"}, []models.RawRow{
		row(2, "E1", "cord", "fe", "30"),
		nan,
	})
	if err != nil {
		t.Fatalf("Process returned unexpected error: %v", err)
	}

	if batch.Records[1].ExcludeReason != models.ExcludeMissingField {
		t.Errorf("ExcludeReason = %q, want missing_field", batch.Records[1].ExcludeReason)
	}

	if batch.Records[1].Image != nil {
		t.Errorf("Image = %v, want nil for an excluded row", *batch.Records[1].Image)
	}

	if batch.Stats.ActiveRows != 1 {
		t.Errorf("ActiveRows = %d, want 1", batch.Stats.ActiveRows)
	}
}
