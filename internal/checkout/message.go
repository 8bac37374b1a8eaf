package checkout

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/origen-putumayo/storefront/pkg/enums"
	"github.com/origen-putumayo/storefront/pkg/types"
)

const messageRule = "---------------------------------------"

// MessageFormatter renders order snapshots into the text handed to the seller chat.
type MessageFormatter struct {
	Brand    string
	SiteName string
	Locale   language.Tag
}

// NewMessageFormatter parses locale, defaulting to Spanish.
func NewMessageFormatter(brand, siteName, locale string) MessageFormatter {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.Spanish
	}
	return MessageFormatter{Brand: brand, SiteName: siteName, Locale: tag}
}

// FormatMessage is deterministic: equal inputs always produce byte-identical output.
func (f MessageFormatter) FormatMessage(customer types.CustomerSnapshot, items []types.OrderItemSnapshot, total decimal.Decimal) string {
	lines := []string{
		"NUEVO PEDIDO – " + f.Brand,
		messageRule,
		"",
		"DATOS DEL CLIENTE",
		"Nombre: " + customer.FullName,
		"Teléfono: " + customer.Phone,
		"Documento: " + string(customer.DocumentType) + " " + customer.DocumentID,
		"Ciudad: " + customer.City,
		"Dirección: " + customer.Address,
	}
	if customer.References != "" {
		lines = append(lines, "Referencias: "+customer.References)
	}
	if customer.Notes != "" {
		lines = append(lines, "Notas: "+customer.Notes)
	}

	lines = append(lines,
		"",
		"DETALLE DEL PEDIDO",
		f.formatItems(items),
		"",
		"TOTAL DEL PEDIDO",
		f.FormatMoney(total),
		"",
		messageRule,
		"Pedido generado desde el sitio web de "+f.SiteName+".",
	)
	return strings.Join(lines, "\n")
}

func (f MessageFormatter) formatItems(items []types.OrderItemSnapshot) string {
	if len(items) == 0 {
		return "—"
	}
	blocks := make([]string, 0, len(items))
	for i, item := range items {
		block := []string{
			strconv.Itoa(i+1) + ". " + item.ProductName,
			"   Empresa: " + item.CompanyName,
			"   Cantidad: " + strconv.Itoa(item.Quantity),
			"   Precio unitario: " + f.FormatMoney(item.UnitPrice),
			"   Subtotal: " + f.FormatMoney(item.Subtotal),
		}
		if item.ItemType == enums.OrderItemTypeSpecialOrder {
			block = append(block, "   Tipo: Encargo")
		}
		blocks = append(blocks, strings.Join(block, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// FormatMoney renders whole currency units with locale grouping and no decimals, e.g. "$ 125.000".
func (f MessageFormatter) FormatMoney(amount decimal.Decimal) string {
	p := message.NewPrinter(f.Locale)
	units := amount.Round(0).IntPart()
	if units < 0 {
		return p.Sprintf("-$ %d", -units)
	}
	return p.Sprintf("$ %d", units)
}
