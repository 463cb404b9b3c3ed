package roles

import "fmt"

// Gerarquia is the numeric hierarchy rank carried by a job title.
type Gerarquia int

const (
	Supervisor Gerarquia = 3
	Gerente    Gerarquia = 4
)

func NewGerarquia(value int) (Gerarquia, error) {
	g := Gerarquia(value)
	if !g.IsApprover() {
		return 0, fmt.Errorf("gerarquia %d cannot approve requests, use %d or %d", value, Supervisor, Gerente)
	}
	return g, nil
}

// IsApprover reports whether users of this rank can be assigned as approvers.
func (g Gerarquia) IsApprover() bool {
	switch g {
	case Supervisor, Gerente:
		return true
	default:
		return false
	}
}

func (g Gerarquia) String() string {
	switch g {
	case Supervisor:
		return "supervisor"
	case Gerente:
		return "gerente"
	default:
		return fmt.Sprintf("gerarquia_%d", int(g))
	}
}
