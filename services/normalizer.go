package services

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// BrandToken wird aus Mitgliedsnamen entfernt ("莫寒-SNH48" -> "莫寒").
const BrandToken = "SNH48"

var fullWidthColon = strings.NewReplacer("：", Delimiter)

// NormalizeOutput trimmt den Wert und ersetzt den Fullwidth-Doppelpunkt durch
// den ASCII-Doppelpunkt, der als Trennzeichen der Zeilen dient.
func NormalizeOutput(s string) string {
	return fullWidthColon.Replace(strings.TrimSpace(s))
}

var nameNoise = strings.NewReplacer(BrandToken, "", "-", "", "_", "")

// NormalizeName vereinheitlicht Accountnamen: NFC, trim, Marke und Bindestriche/Unterstriche entfernen.
func NormalizeName(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	return nameNoise.Replace(s)
}
