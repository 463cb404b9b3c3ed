package resources

import (
	"context"
	"strings"

	"procurement/internal/store"
	custom_error "procurement/pkg/errors"
	"procurement/pkg/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
)

type Gateway interface {
	ListRecursos(ctx context.Context) ([]models.Recurso, error)
	ListUnidades(ctx context.Context) ([]models.Unidad, error)
	ListAlmacenes(ctx context.Context) ([]models.Almacen, error)
	ListUsuarios(ctx context.Context) ([]models.Usuario, error)
}

// RecursoView is a catalog resource with its unit name resolved.
type RecursoView struct {
	models.Recurso
	Unidad string `json:"unidad"`
}

type CatalogService struct {
	gw     Gateway
	logger *zap.Logger
}

func NewCatalogService(gw Gateway, logger *zap.Logger) *CatalogService {
	return &CatalogService{gw: gw, logger: logger}
}

// ensure serves the cached snapshot unless it was never loaded or a refresh
// is requested.
func ensure[T store.Entity](ctx context.Context, c *store.Collection[T], fetch func(ctx context.Context) ([]T, error), refresh bool) ([]T, error) {
	snapshot := c.Snapshot()
	if !refresh && !snapshot.UpdatedAt.IsZero() && snapshot.Error == "" {
		return snapshot.Items, nil
	}

	snapshot, err := c.Load(ctx, fetch)
	if err != nil {
		return nil, err
	}
	return snapshot.Items, nil
}

// Recursos lists catalog resources matching search on code or name. Resources
// and units are fetched in parallel.
func (s *CatalogService) Recursos(ctx context.Context, st *store.Store, search string, refresh bool) ([]RecursoView, error) {
	var (
		recursos []models.Recurso
		unidades []models.Unidad
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recursos, err = ensure(gctx, st.Recursos, s.gw.ListRecursos, refresh)
		return err
	})
	g.Go(func() error {
		var err error
		unidades, err = ensure(gctx, st.Unidades, s.gw.ListUnidades, refresh)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(unidades))
	for _, u := range unidades {
		names[u.ID] = u.Nombre
	}

	caser := cases.Fold()
	term := caser.String(strings.TrimSpace(search))

	views := make([]RecursoView, 0, len(recursos))
	for _, r := range recursos {
		if term != "" &&
			!strings.Contains(caser.String(r.Nombre), term) &&
			!strings.Contains(caser.String(r.Codigo), term) {
			continue
		}
		views = append(views, RecursoView{Recurso: r, Unidad: names[r.UnidadID]})
	}

	return views, nil
}

func (s *CatalogService) Recurso(ctx context.Context, st *store.Store, id string) (*RecursoView, error) {
	views, err := s.Recursos(ctx, st, "", false)
	if err != nil {
		return nil, err
	}

	for _, v := range views {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, custom_error.ErrNotFound
}

func (s *CatalogService) Unidades(ctx context.Context, st *store.Store, refresh bool) ([]models.Unidad, error) {
	return ensure(ctx, st.Unidades, s.gw.ListUnidades, refresh)
}

func (s *CatalogService) Almacenes(ctx context.Context, st *store.Store, refresh bool) ([]models.Almacen, error) {
	return ensure(ctx, st.Almacenes, s.gw.ListAlmacenes, refresh)
}

func (s *CatalogService) Usuarios(ctx context.Context, st *store.Store, refresh bool) ([]models.Usuario, error) {
	return ensure(ctx, st.Usuarios, s.gw.ListUsuarios, refresh)
}
