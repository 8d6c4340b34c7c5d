package mock

import "github.com/fwojciec/xconnector"

var _ xconnector.TableParser = (*TableParser)(nil)

// TableParser is a mock implementation of xconnector.TableParser.
type TableParser struct {
	ParseFn func(html string) ([]xconnector.RawTable, error)
}

func (p *TableParser) Parse(html string) ([]xconnector.RawTable, error) {
	return p.ParseFn(html)
}
