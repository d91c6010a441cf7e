package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/sweep"
)

type ExportData struct {
	Meta    RunMetadata `json:"meta"`
	Steps   int         `json:"steps"`
	Times   []float64   `json:"times"`
	States  [][]float64 `json:"states"`
	Records []RecordRow `json:"records,omitempty"`
}

// RecordRow is the flat form of a sweep record used by JSON and Parquet.
// Non-finite summaries are stored as null in JSON.
type RecordRow struct {
	K           float64  `json:"k" parquet:"name=k,type=DOUBLE"`
	Biomass     *float64 `json:"biomass" parquet:"name=biomass,type=DOUBLE,repetitiontype=OPTIONAL"`
	Persistence *float64 `json:"persistence" parquet:"name=persistence,type=DOUBLE,repetitiontype=OPTIONAL"`
	Growth      *float64 `json:"growth" parquet:"name=growth,type=DOUBLE,repetitiontype=OPTIONAL"`
	Variability *float64 `json:"variability" parquet:"name=variability,type=DOUBLE,repetitiontype=OPTIONAL"`
	Err         string   `json:"err,omitempty" parquet:"name=err,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// StateRow is one species at one time in long format.
type StateRow struct {
	Time    float64 `parquet:"name=time,type=DOUBLE"`
	Species int32   `parquet:"name=species,type=INT32"`
	Biomass float64 `parquet:"name=biomass,type=DOUBLE"`
}

func RecordRows(records []sweep.Record) []RecordRow {
	rows := make([]RecordRow, len(records))
	for i, r := range records {
		rows[i] = RecordRow{
			K:           r.K,
			Biomass:     optional(r.Biomass),
			Persistence: optional(r.Persistence),
			Growth:      optional(r.Growth),
			Variability: optional(r.Variability),
		}
		if r.Err != nil {
			rows[i].Err = r.Err.Error()
		}
	}
	return rows
}

func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func ExportRunJSON(w io.Writer, meta RunMetadata, result *dynamo.Result) error {
	data := ExportData{
		Meta:   meta,
		Steps:  len(result.Times),
		Times:  result.Times,
		States: make([][]float64, len(result.States)),
	}
	data.Meta.Metrics = finite(data.Meta.Metrics)
	for i, s := range result.States {
		data.States[i] = s
	}
	return encodeJSON(w, data)
}

func ExportSweepJSON(w io.Writer, meta RunMetadata, records []sweep.Record) error {
	data := ExportData{
		Meta:    meta,
		Steps:   len(records),
		Records: RecordRows(records),
	}
	data.Meta.Metrics = finite(data.Meta.Metrics)
	return encodeJSON(w, data)
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// ExportSweepParquet writes records to a Snappy-compressed Parquet file.
func ExportSweepParquet(path string, records []sweep.Record) error {
	return writeParquet(path, new(RecordRow), func(pw *writer.ParquetWriter) error {
		for _, row := range RecordRows(records) {
			if err := pw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// ExportRunParquet writes a trajectory in long format, one row per species
// and time.
func ExportRunParquet(path string, result *dynamo.Result) error {
	return writeParquet(path, new(StateRow), func(pw *writer.ParquetWriter) error {
		for i, x := range result.States {
			for j, b := range x {
				row := StateRow{Time: result.Times[i], Species: int32(j), Biomass: b}
				if err := pw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func writeParquet(path string, schema any, write func(*writer.ParquetWriter) error) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create local file writer: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		return fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	if err := write(pw); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// ReadSweepParquet loads records written by ExportSweepParquet.
func ReadSweepParquet(path string) ([]RecordRow, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(RecordRow), 4)
	if err != nil {
		return nil, err
	}
	defer pr.ReadStop()

	rows := make([]RecordRow, pr.GetNumRows())
	if err := pr.Read(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}
