package doctpl_test

import (
	"fmt"

	"github.com/lvillar/invoicepdf/doctpl"
	"github.com/lvillar/invoicepdf/model"
)

func ExampleDocument_Invoice() {
	doc, err := doctpl.Parse([]byte(`
sender:
  name: Acme Studio
recipient:
  company: Widget Co
invoice:
  abbrev: WC
  sequence: "07"
  issueDate: 2024-03-01
  dueInDays: 30
items:
  - type: Design
    description: Logo
    quantity: 2
    rate: 100
  - description: Hosting
    quantity: 1
    rate: "75.00"
`))
	if err != nil {
		fmt.Println(err)
		return
	}
	inv, err := doc.Invoice()
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(inv.Meta.InvoiceNumber())
	fmt.Println(inv.Meta.DueDate.Display(), inv.Meta.TermsLabel())
	for _, c := range inv.Subtotals().Categories {
		fmt.Println(c.Name, model.FormatMoney(c.Total, inv.Meta.Currency))
	}
	fmt.Println("TOTAL", model.FormatMoney(inv.Subtotal(), inv.Meta.Currency))
	// Output:
	// IN-WC-07
	// 31-MAR-2024 NET 30
	// Design $200.00
	// TOTAL $275.00
}
