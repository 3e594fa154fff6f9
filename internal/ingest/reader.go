package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"pollweight/internal/models"
	"pollweight/internal/normalizer"
	"pollweight/pkg/utils"
)

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// Column identifiers of a wave extract.
const (
	colDate          = "date"
	colSurvey        = "survey"
	colProvince      = "province"
	colSex           = "sex"
	colAge           = "age"
	colEducation     = "education"
	colHouseholdSize = "household_size"
	colImage         = "image"
	colVote          = "vote"
	colPriorVote     = "prior_vote"
)

// headerAliases maps folded header names to column identifiers.
var headerAliases = map[string]string{
	"fecha":                               colDate,
	"date":                                colDate,
	"encuesta":                            colSurvey,
	"survey":                              colSurvey,
	"survey id":                           colSurvey,
	"estrato":                             colProvince,
	"provincia":                           colProvince,
	"province":                            colProvince,
	"sexo":                                colSex,
	"sex":                                 colSex,
	"edad":                                colAge,
	"age":                                 colAge,
	"nivel educativo":                     colEducation,
	"education":                           colEducation,
	"cantidad de integrantes en el hogar": colHouseholdSize,
	"household size":                      colHouseholdSize,
	"imagen del candidato":                colImage,
	"image":                               colImage,
	"voto":                                colVote,
	"vote":                                colVote,
	"voto anterior":                       colPriorVote,
	"prior vote":                          colPriorVote,
}

var requiredColumns = []string{colDate, colSurvey, colProvince, colSex, colAge, colImage, colVote, colPriorVote}

// ReadWave parses the extract of wave.
func ReadWave(wave models.Wave) ([]models.RawRow, error) {
	f, err := os.Open(wave.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wave %s: %w", wave.Label, err)
	}
	defer f.Close()

	rows, err := ParseRows(f)
	if err != nil {
		return nil, fmt.Errorf("wave %s: %w", wave.Label, err)
	}

	return rows, nil
}

// ParseRows parses wave rows from r. Unknown columns are ignored.
func ParseRows(r io.Reader) ([]models.RawRow, error) {
	reader, err := utils.NewCSVReader(r)
	if err != nil {
		return nil, err
	}

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int)

	for i, h := range header {
		if name, ok := headerAliases[normalizer.Fold(h)]; ok {
			if _, dup := columns[name]; !dup {
				columns[name] = i
			}
		}
	}

	for _, c := range requiredColumns {
		if _, ok := columns[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	var rows []models.RawRow

	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return nil, fmt.Errorf("line %d: %w", utils.ErrorLine(readErr), readErr)
		}

		if utils.IsBlankRecord(record) {
			continue
		}

		line, _ := reader.FieldPos(0)

		get := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}

			return strings.TrimSpace(record[i])
		}

		rows = append(rows, models.RawRow{
			Line:          line,
			Date:          get(colDate),
			SurveyID:      get(colSurvey),
			Province:      get(colProvince),
			Sex:           get(colSex),
			Age:           get(colAge),
			Education:     get(colEducation),
			HouseholdSize: get(colHouseholdSize),
			Image:         get(colImage),
			Vote:          get(colVote),
			PriorVote:     get(colPriorVote),
		})
	}

	return rows, nil
}
