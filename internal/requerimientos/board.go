package requerimientos

import (
	"strings"

	"procurement/pkg/metadata"
	"procurement/pkg/models"

	"golang.org/x/text/cases"
)

const deliveryDateLayout = "02/01/2006"

type column struct {
	key    string
	title  string
	estado metadata.EstadoAtencion
}

// columns is the fixed left to right order of the board.
var columns = []column{
	{key: "aprobacion_supervisor", title: "Aprobación supervisor", estado: metadata.EstadoPendiente},
	{key: "aprobacion_gerencia", title: "Aprobación gerencia", estado: metadata.EstadoAprobadoSupervisor},
	{key: "gestion_logistica", title: "Gestión logística", estado: metadata.EstadoAprobadoGerencia},
	{key: "gestion_almacen", title: "Gestión almacén", estado: metadata.EstadoAprobadoLogistica},
	{key: "gestion_traslado", title: "Gestión traslado", estado: metadata.EstadoAprobadoAlmacen},
	{key: "gestion_atencion_parcial", title: "Atención parcial", estado: metadata.EstadoAtencionParcial},
	{key: "atencion_completados", title: "Completados", estado: metadata.EstadoTerminados},
}

// Card is a display snapshot; it does not keep the request it came from.
type Card struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	DeliveryDate string `json:"delivery_date"`
	Assignee     string `json:"assignee"`
	Estado       string `json:"estado_atencion"`
	Highlight    bool   `json:"highlight"`
}

type Bucket struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Estado string `json:"estado_atencion"`
	Cards  []Card `json:"cards"`
}

// Board holds the seven workflow buckets. Requests whose status matches none
// of them land in Unclassified instead of disappearing.
type Board struct {
	Buckets      []Bucket `json:"buckets"`
	Unclassified []Card   `json:"unclassified"`
}

func NewCard(req models.Requerimiento) Card {
	card := Card{
		ID:          req.ID,
		Title:       req.Codigo,
		Description: req.Sustento,
		Assignee:    req.Usuario,
		Estado:      req.EstadoAtencion,
	}
	if req.FechaFinal != nil {
		card.DeliveryDate = req.FechaFinal.Format(deliveryDateLayout)
	}
	return card
}

// Matcher tests requests against a search term using Unicode case folding.
// A Matcher is not safe for concurrent use.
type Matcher struct {
	caser cases.Caser
	term  string
}

func NewMatcher(search string) *Matcher {
	caser := cases.Fold()
	return &Matcher{caser: caser, term: caser.String(search)}
}

func (m *Matcher) Match(req models.Requerimiento) bool {
	if m.term == "" {
		return true
	}
	return strings.Contains(m.caser.String(req.Codigo), m.term) ||
		strings.Contains(m.caser.String(req.Sustento), m.term)
}

// BuildBoard filters reqs by search and distributes them into the buckets,
// keeping input order inside each bucket.
func BuildBoard(reqs []models.Requerimiento, search string) Board {
	board := Board{
		Buckets:      make([]Bucket, len(columns)),
		Unclassified: []Card{},
	}
	index := make(map[metadata.EstadoAtencion]int, len(columns))
	for i, col := range columns {
		board.Buckets[i] = Bucket{Key: col.key, Title: col.title, Estado: string(col.estado), Cards: []Card{}}
		index[col.estado] = i
	}

	matcher := NewMatcher(search)
	for _, req := range reqs {
		if !matcher.Match(req) {
			continue
		}

		card := NewCard(req)
		i, ok := index[metadata.EstadoAtencion(req.EstadoAtencion)]
		if !ok {
			board.Unclassified = append(board.Unclassified, card)
			continue
		}
		board.Buckets[i].Cards = append(board.Buckets[i].Cards, card)
	}

	return board
}

// Bucket returns the bucket with the given key.
func (b Board) Bucket(key string) (Bucket, bool) {
	for _, bucket := range b.Buckets {
		if bucket.Key == key {
			return bucket, true
		}
	}
	return Bucket{}, false
}

// Highlight sets the highlight flag of every card whose id is in ids.
func (b Board) Highlight(ids map[string]bool) Board {
	for i := range b.Buckets {
		for j := range b.Buckets[i].Cards {
			b.Buckets[i].Cards[j].Highlight = ids[b.Buckets[i].Cards[j].ID]
		}
	}
	for i := range b.Unclassified {
		b.Unclassified[i].Highlight = ids[b.Unclassified[i].ID]
	}
	return b
}

// CardIDs lists the ids of every card on the board, unclassified included.
func (b Board) CardIDs() []string {
	var ids []string
	for _, bucket := range b.Buckets {
		for _, card := range bucket.Cards {
			ids = append(ids, card.ID)
		}
	}
	for _, card := range b.Unclassified {
		ids = append(ids, card.ID)
	}
	return ids
}
