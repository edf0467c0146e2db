package service

import (
	"fmt"
	"net/url"
	"strings"

	"cafehub/internal/catalog"
	"cafehub/internal/models"

	"github.com/skip2/go-qrcode"
)

const qrScheme = "cafehub"

// TablePayload is the text encoded in the QR code of a table
func TablePayload(cafeID, tableID string) string {
	return fmt.Sprintf("%s://cafes/%s/tables/%s", qrScheme, cafeID, tableID)
}

// ParseTablePayload extracts cafe and table ids from a scanned code
func ParseTablePayload(payload string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(payload))
	if err != nil || u.Scheme != qrScheme || u.Host != "cafes" {
		return "", "", ErrInvalidScan
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 3 || parts[1] != "tables" || parts[0] == "" || parts[2] == "" {
		return "", "", ErrInvalidScan
	}
	return parts[0], parts[2], nil
}

// QRGenerator renders table codes as PNG images
type QRGenerator struct {
	catalog *catalog.Catalog
	size    int
}

func NewQRGenerator(c *catalog.Catalog) *QRGenerator {
	return &QRGenerator{catalog: c, size: 256}
}

// TablePNG returns the QR code of a table printed on its stand
func (g *QRGenerator) TablePNG(cafeID, tableID string) ([]byte, error) {
	if _, err := g.catalog.Table(cafeID, tableID); err != nil {
		return nil, err
	}
	return qrcode.Encode(TablePayload(cafeID, tableID), qrcode.Medium, g.size)
}

// resolveScan maps a QR payload or a typed table number to a table. A typed
// number that matches nothing shows the first table under the typed label.
func resolveScan(c *catalog.Catalog, cafeID, payload, label string) (models.Table, error) {
	if payload != "" {
		scannedCafe, tableID, err := ParseTablePayload(payload)
		if err != nil {
			return models.Table{}, err
		}
		if scannedCafe != cafeID {
			return models.Table{}, fmt.Errorf("%w: code belongs to %s", ErrInvalidScan, scannedCafe)
		}
		return c.Table(cafeID, tableID)
	}

	plan, err := c.FloorPlan(cafeID)
	if err != nil {
		return models.Table{}, err
	}
	label = strings.TrimSpace(label)
	if label != "" {
		if t, err := c.TableByLabel(cafeID, label); err == nil {
			return t, nil
		}
	}
	if len(plan.Tables) == 0 {
		return models.Table{}, catalog.ErrTableNotFound
	}
	fallback := plan.Tables[0]
	if label != "" {
		fallback.Label = label
	}
	return fallback, nil
}
