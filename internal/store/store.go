package store

import (
	"sync"

	"procurement/pkg/models"
)

// Store owns the entity collections of one session.
type Store struct {
	Requerimientos *Collection[models.Requerimiento]
	Usuarios       *Collection[models.Usuario]
	Recursos       *Collection[models.Recurso]
	Unidades       *Collection[models.Unidad]
	Almacenes      *Collection[models.Almacen]
	Cotizaciones   *Collection[models.Cotizacion]
	OrdenesCompra  *Collection[models.OrdenCompra]

	mu                    sync.Mutex
	requerimientoRecursos map[string]*Collection[models.RequerimientoRecurso]
	aprobaciones          map[string]*Collection[models.Aprobacion]
}

func New() *Store {
	return &Store{
		Requerimientos:        NewCollection[models.Requerimiento](),
		Usuarios:              NewCollection[models.Usuario](),
		Recursos:              NewCollection[models.Recurso](),
		Unidades:              NewCollection[models.Unidad](),
		Almacenes:             NewCollection[models.Almacen](),
		Cotizaciones:          NewCollection[models.Cotizacion](),
		OrdenesCompra:         NewCollection[models.OrdenCompra](),
		requerimientoRecursos: make(map[string]*Collection[models.RequerimientoRecurso]),
		aprobaciones:          make(map[string]*Collection[models.Aprobacion]),
	}
}

// RequerimientoRecursos returns the line items collection of one request.
func (s *Store) RequerimientoRecursos(requerimientoID string) *Collection[models.RequerimientoRecurso] {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.requerimientoRecursos[requerimientoID]
	if !ok {
		c = NewCollection[models.RequerimientoRecurso]()
		s.requerimientoRecursos[requerimientoID] = c
	}
	return c
}

// Aprobaciones returns the approvals collection of one request.
func (s *Store) Aprobaciones(requerimientoID string) *Collection[models.Aprobacion] {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.aprobaciones[requerimientoID]
	if !ok {
		c = NewCollection[models.Aprobacion]()
		s.aprobaciones[requerimientoID] = c
	}
	return c
}
