package output

import (
	"encoding/json"

	"github.com/rgehrsitz/isrmx/internal/domain"
)

// JSONFormatter writes the exact result; decimals are encoded as strings so
// no centavo is lost on the way through.
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
}

func (JSONFormatter) Name() string { return "json" }

func (jf JSONFormatter) Format(result domain.TaxResult) ([]byte, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}
