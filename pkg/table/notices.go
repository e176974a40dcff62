package table

import "github.com/MobilityData/gtfs-validator-sub014/pkg/notice"

var (
	MissingRequiredFile      = notice.Define("missing_required_file", notice.Error)
	MissingRecommendedFile   = notice.Define("missing_recommended_file", notice.Warning)
	EmptyFile                = notice.Define("empty_file", notice.Error)
	EmptyColumnName          = notice.Define("empty_column_name", notice.Error)
	DuplicatedColumn         = notice.Define("duplicated_column", notice.Error)
	UnknownColumn            = notice.Define("unknown_column", notice.Warning)
	MissingRequiredColumn    = notice.Define("missing_required_column", notice.Error)
	MissingRecommendedColumn = notice.Define("missing_recommended_column", notice.Warning)
	InvalidRowLength         = notice.Define("invalid_row_length", notice.Error)
	MissingRequiredValue     = notice.Define("missing_required_value", notice.Error)
	MissingRecommendedField  = notice.Define("missing_recommended_field", notice.Warning)
	DuplicateKey             = notice.Define("duplicate_key", notice.Error)
	CSVParsingFailed         = notice.Define("csv_parsing_failed", notice.Error)
)
