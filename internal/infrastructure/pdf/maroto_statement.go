// Package pdf implementa el estado de cuenta del monedero en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Cafetería escolar  │  Estudiante + Fecha           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Monto                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SALDO ACTUAL                                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jcastell/cafeteria-api/internal/application/wallet"
	"github.com/jcastell/cafeteria-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 96, Blue: 60}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ wallet.StatementGenerator = (*MarotoStatementGenerator)(nil)

// MarotoStatementGenerator implementa wallet.StatementGenerator usando Maroto v2.
type MarotoStatementGenerator struct{}

// NewMarotoStatementGenerator construye el generador.
func NewMarotoStatementGenerator() *MarotoStatementGenerator { return &MarotoStatementGenerator{} }

// GenerateStatementPDF genera el estado de cuenta y devuelve sus bytes.
func (g *MarotoStatementGenerator) GenerateStatementPDF(
	_ context.Context,
	user *entity.User,
	transactions []*entity.TokenTransaction,
	balance decimal.Decimal,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Estado de cuenta del monedero", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(user))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, tx := range transactions {
		m.AddRows(transactionRow(tx))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(balanceRow(balance))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: título (izq) y estudiante + fecha de emisión (der).
func headerRow(user *entity.User) core.Row {
	emitted := time.Now().Format("02/01/2006")
	return row.New(16).Add(
		col.New(7).Add(
			text.New("Cafetería escolar", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Estado de cuenta del monedero", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(user.FirstName+" "+user.LastName, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
			}),
			text.New("Emitido: "+emitted, props.Text{
				Size: 9, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	return row.New(7).Add(
		col.New(4).Add(text.New("Fecha", props.Text{Style: fontstyle.Bold, Size: 9})),
		col.New(4).Add(text.New("Tipo", props.Text{Style: fontstyle.Bold, Size: 9})),
		col.New(4).Add(text.New("Monto", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right})),
	)
}

func transactionRow(tx *entity.TokenTransaction) core.Row {
	label := "Recarga"
	if tx.Type == entity.TransactionPurchase {
		label = "Compra"
	}
	return row.New(6).Add(
		col.New(4).Add(text.New(tx.CreatedAt.Format("02/01/2006 15:04"), props.Text{Size: 8})),
		col.New(4).Add(text.New(label, props.Text{Size: 8})),
		col.New(4).Add(text.New(tx.Amount.StringFixed(2), props.Text{Size: 8, Align: align.Right})),
	)
}

func balanceRow(balance decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(8).Add(text.New("SALDO ACTUAL", props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Top: 2,
		})),
		col.New(4).Add(text.New(balance.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Top: 2,
		})),
	)
}
