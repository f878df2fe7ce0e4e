// validation.go
package shopstate

import (
	"fmt"
	"strconv"
	"strings"
)

var validThemes = map[Theme]bool{
	ThemeLight:  true,
	ThemeDark:   true,
	ThemeSystem: true,
}

func isValidTheme(t Theme) bool {
	return validThemes[t]
}

// ParseTheme converts s into a Theme, accepting any letter case.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if !isValidTheme(t) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
	return t, nil
}

// LineItemID returns the cart line id for a product/variant pair.
func LineItemID(productID, variantID int64) string {
	return strconv.FormatInt(productID, 10) + "-" + strconv.FormatInt(variantID, 10)
}

// FavoriteKey returns the favorites key for a numeric product id.
func FavoriteKey(productID int64) string {
	return strconv.FormatInt(productID, 10)
}
