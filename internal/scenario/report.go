package scenario

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/vmihailenco/msgpack/v5"
)

// reportSchema is bumped whenever Report changes incompatibly
const reportSchema uint16 = 1

// Report collects the outcomes of checking one scenario file.
type Report struct {
	Schema   uint16    `msgpack:"schema"`
	Path     string    `msgpack:"path"`
	Outcomes []Outcome `msgpack:"outcomes"`
	Passed   int       `msgpack:"passed"`
	Failed   int       `msgpack:"failed"`
}

func newReport(path string, outcomes []Outcome) *Report {
	passed := lo.CountBy(outcomes, func(o Outcome) bool { return o.Passed })
	return &Report{
		Schema:   reportSchema,
		Path:     path,
		Outcomes: outcomes,
		Passed:   passed,
		Failed:   len(outcomes) - passed,
	}
}

func (r *Report) OK() bool { return r.Failed == 0 }

func (r *Report) Encode(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(r)
}

func DecodeReport(rd io.Reader) (*Report, error) {
	var r Report
	if err := msgpack.NewDecoder(rd).Decode(&r); err != nil {
		return nil, errors.Wrap(err, "decoding report")
	}
	if r.Schema != reportSchema {
		return nil, errors.Errorf("report schema %d is not supported, expected %d", r.Schema, reportSchema)
	}
	return &r, nil
}

func WriteReport(path string, r *Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating report")
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = errors.Wrap(closeErr, "closing report")
		}
	}()
	return r.Encode(f)
}

func ReadReport(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening report")
	}
	defer f.Close()
	return DecodeReport(f)
}
