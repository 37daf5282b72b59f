// Package cfdi decodes Mexican electronic invoices (CFDI 3.3 and 4.0) into
// invoice input. Only the issuer and the line items are read.
package cfdi

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"tooltrack/internal/service"
)

var ErrNotCFDI = errors.New("document is not a CFDI invoice")

type comprobante struct {
	XMLName   xml.Name `xml:"Comprobante"`
	Serie     string   `xml:"Serie,attr"`
	Folio     string   `xml:"Folio,attr"`
	Emisor    emisor   `xml:"Emisor"`
	Conceptos struct {
		Items []concepto `xml:"Concepto"`
	} `xml:"Conceptos"`
	Complemento struct {
		Timbre struct {
			UUID string `xml:"UUID,attr"`
		} `xml:"TimbreFiscalDigital"`
	} `xml:"Complemento"`
}

type emisor struct {
	Rfc    string `xml:"Rfc,attr"`
	Nombre string `xml:"Nombre,attr"`
}

type concepto struct {
	NoIdentificacion string `xml:"NoIdentificacion,attr"`
	ClaveProdServ    string `xml:"ClaveProdServ,attr"`
	Descripcion      string `xml:"Descripcion,attr"`
	Cantidad         string `xml:"Cantidad,attr"`
}

// Parse reads a CFDI document. A line's code is its NoIdentificacion, or the
// ClaveProdServ when the issuer left it out.
func Parse(r io.Reader) (*service.InvoiceInput, error) {
	var doc comprobante
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotCFDI, err)
	}
	if doc.XMLName.Local != "Comprobante" {
		return nil, ErrNotCFDI
	}
	if strings.TrimSpace(doc.Emisor.Rfc) == "" {
		return nil, fmt.Errorf("%w: missing issuer RFC", ErrNotCFDI)
	}

	in := &service.InvoiceInput{
		SupplierID:   strings.TrimSpace(doc.Emisor.Rfc),
		SupplierName: doc.Emisor.Nombre,
		Reference:    reference(doc),
	}
	for _, c := range doc.Conceptos.Items {
		code := strings.TrimSpace(c.NoIdentificacion)
		if code == "" {
			code = strings.TrimSpace(c.ClaveProdServ)
		}
		qty, err := decimal.NewFromString(strings.TrimSpace(c.Cantidad))
		if err != nil {
			// Left at zero so the line is reported instead of dropped.
			qty = decimal.Zero
		}
		in.Lines = append(in.Lines, service.InvoiceLine{
			Code:        code,
			Description: c.Descripcion,
			Quantity:    qty,
		})
	}
	return in, nil
}

func reference(doc comprobante) string {
	if doc.Complemento.Timbre.UUID != "" {
		return doc.Complemento.Timbre.UUID
	}
	return strings.TrimSpace(doc.Serie + doc.Folio)
}
