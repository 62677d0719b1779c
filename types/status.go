package types

import "fmt"

type Status uint8

const (
	Pass Status = iota
	Fail
	NotImplemented
)

var StatusNameMap = map[string]Status{
	"pass":            Pass,
	"fail":            Fail,
	"not implemented": NotImplemented,
}

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	case NotImplemented:
		return "not implemented"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

func NewStatus(label string) (s Status, err error) {
	var ok bool
	if s, ok = StatusNameMap[label]; !ok {
		err = fmt.Errorf("unknown verification status %q", label)
	}
	return
}
