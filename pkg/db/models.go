package db

var tables = []string{
	"LanguageTable",
	"ParameterTable",
	"CodeTable",
	"SourceTable",
	"ValueTable",
	"ValueTable_SourceTable",
}
