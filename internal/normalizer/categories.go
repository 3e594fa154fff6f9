package normalizer

import (
	"fmt"
)

// Field names used by the built-in domains.
const (
	FieldProvince = "province"
	FieldSex      = "sex"
)

// Canonical sex codes.
const (
	SexFemale = "F"
	SexMale   = "M"
)

var provinceNames = []struct {
	code    string
	label   string
	aliases []string
}{
	{"BUENOS AIRES", "Buenos Aires", []string{"pba", "bs as", "provincia de buenos aires"}},
	{"CATAMARCA", "Catamarca", nil},
	{"CHACO", "Chaco", nil},
	{"CHUBUT", "Chubut", nil},
	{"CIUDAD AUTONOMA DE BUENOS AIRES", "Ciudad Autónoma de Buenos Aires", []string{"caba", "capital federal", "ciudad de buenos aires"}},
	{"CORDOBA", "Córdoba", []string{"cba"}},
	{"CORRIENTES", "Corrientes", []string{"ctes"}},
	{"ENTRE RIOS", "Entre Ríos", nil},
	{"FORMOSA", "Formosa", nil},
	{"JUJUY", "Jujuy", nil},
	{"LA PAMPA", "La Pampa", nil},
	{"LA RIOJA", "La Rioja", nil},
	{"MENDOZA", "Mendoza", []string{"mza"}},
	{"MISIONES", "Misiones", nil},
	{"NEUQUEN", "Neuquén", []string{"nqn"}},
	{"RIO NEGRO", "Río Negro", nil},
	{"SALTA", "Salta", nil},
	{"SAN JUAN", "San Juan", nil},
	{"SAN LUIS", "San Luis", nil},
	{"SANTA CRUZ", "Santa Cruz", nil},
	{"SANTA FE", "Santa Fe", nil},
	{"SANTIAGO DEL ESTERO", "Santiago del Estero", nil},
	{"TIERRA DEL FUEGO", "Tierra del Fuego, Antártida e Islas del Atlántico Sur", []string{"tdf"}},
	{"TUCUMAN", "Tucumán", nil},
}

// ProvinceCategories returns the 24 jurisdictions numbered 01-24 in alphabetical order.
// Both the zero-padded and the bare number are accepted spellings.
func ProvinceCategories() []Category {
	categories := make([]Category, 0, len(provinceNames))

	for i, p := range provinceNames {
		aliases := []string{fmt.Sprintf("%02d", i+1), fmt.Sprintf("%d", i+1)}
		aliases = append(aliases, p.aliases...)
		categories = append(categories, Category{Code: p.code, Label: p.label, Aliases: aliases})
	}

	return categories
}

// SexCategories returns the sex domain with the survey codebook spellings.
func SexCategories() []Category {
	return []Category{
		{Code: SexFemale, Label: "Femenino", Aliases: []string{"femenino", "female", "fem"}},
		{Code: SexMale, Label: "Masculino", Aliases: []string{"masculino", "male", "masc", "mu", "hombre", "varon"}},
	}
}

// Provinces returns the built-in province domain.
func Provinces() *Domain {
	d, err := NewDomain(FieldProvince, ProvinceCategories())
	if err != nil {
		panic(err)
	}

	return d
}

// Sexes returns the built-in sex domain.
func Sexes() *Domain {
	d, err := NewDomain(FieldSex, SexCategories())
	if err != nil {
		panic(err)
	}

	return d
}
