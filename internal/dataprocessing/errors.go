package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for uploads that are neither a workbook nor CSV.
var ErrUnsupportedFormat = errors.New("formato de archivo no soportado")

// MissingColumnsHint is shown to the user next to a MissingColumnsError
const MissingColumnsHint = "Asegúrate de que tu archivo Excel contenga todas las columnas requeridas."

// MissingColumnsError lists every required header absent from the input,
// in required-column order.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return "Faltan las siguientes columnas en el archivo: " + strings.Join(e.Missing, ", ")
}

// MalformedTimestampError identifies a registration row whose start time
// could not be read as a date-time.
type MalformedTimestampError struct {
	Row   int
	Value string
	Err   error
}

func (e *MalformedTimestampError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("fila %d: la columna %q está vacía", e.Row, ColumnStartTime)
	}
	return fmt.Sprintf("fila %d: %q no es una fecha válida en la columna %q", e.Row, e.Value, ColumnStartTime)
}

func (e *MalformedTimestampError) Unwrap() error {
	return e.Err
}

// EmptyDatasetError is returned when no registration rows remain after loading.
type EmptyDatasetError struct{}

func (e *EmptyDatasetError) Error() string {
	return "el archivo no contiene registros de inscripción"
}

// Is matches any *EmptyDatasetError so callers can use errors.Is(err, ErrEmptyDataset).
func (e *EmptyDatasetError) Is(target error) bool {
	_, ok := target.(*EmptyDatasetError)
	return ok
}

// ErrEmptyDataset is the canonical empty-input error
var ErrEmptyDataset error = &EmptyDatasetError{}
