package requerimientos

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

const unclassifiedTitle = "Sin clasificar"

// RenderBoard writes the board as a table, one row per card in bucket order.
// Cards awaiting the viewer's decision are marked with an asterisk.
func RenderBoard(w io.Writer, board Board) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Columna", "Código", "Sustento", "Entrega", "Solicitante", ""})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoMergeCells(true)
	table.SetRowLine(true)

	for _, bucket := range board.Buckets {
		for _, card := range bucket.Cards {
			table.Append(cardRow(bucket.Title, card))
		}
	}
	for _, card := range board.Unclassified {
		table.Append(cardRow(unclassifiedTitle, card))
	}

	table.Render()
}

func cardRow(column string, card Card) []string {
	mark := ""
	if card.Highlight {
		mark = "*"
	}
	return []string{column, card.Title, card.Description, card.DeliveryDate, card.Assignee, mark}
}
