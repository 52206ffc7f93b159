// Package matching implementa la cadena priorizada de emparejamiento
// transacción→cliente. Una transacción puede llegar sin customerId (referencia
// débil); la identidad de respaldo es (dogName, phone) o (dogName, ownerName).
// La misma cadena la usan el ajuste incremental de balance y la
// reconciliación, para que ambos caminos vean el mismo universo de
// transacciones.
package matching

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"
)

var foldCaser = cases.Fold()

// NormalizeName normaliza un nombre para comparación: NFKC, case folding y
// colapso de espacios. Necesario porque los nombres llegan tecleados a mano
// desde el mostrador.
func NormalizeName(s string) string {
	s = norm.NFKC.String(s)
	s = foldCaser.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizePhone deja solo los dígitos del teléfono ("010-1234-5678" y
// "01012345678" deben emparejar igual).
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MatchByID emparejamiento exacto por customerId (prioridad 1).
func MatchByID(c *entity.Customer, t *entity.Transaction) bool {
	return t.CustomerID != "" && t.CustomerID == c.ID
}

// MatchByDogAndPhone emparejamiento por (dogName, phone normalizado)
// (prioridad 2).
func MatchByDogAndPhone(c *entity.Customer, t *entity.Transaction) bool {
	if t.DogName == "" || t.Phone == "" {
		return false
	}
	return NormalizeName(t.DogName) == NormalizeName(c.DogName) &&
		NormalizePhone(t.Phone) == NormalizePhone(c.Phone)
}

// MatchByDogAndOwner emparejamiento por (dogName, ownerName) (prioridad 3).
func MatchByDogAndOwner(c *entity.Customer, t *entity.Transaction) bool {
	if t.DogName == "" || t.CustomerName == "" {
		return false
	}
	return NormalizeName(t.DogName) == NormalizeName(c.DogName) &&
		NormalizeName(t.CustomerName) == NormalizeName(c.OwnerName)
}

// Matches indica si la transacción es alcanzable desde el cliente por
// cualquiera de los tres emparejadores (la reconciliación une los tres).
func Matches(c *entity.Customer, t *entity.Transaction) bool {
	return MatchByID(c, t) || MatchByDogAndPhone(c, t) || MatchByDogAndOwner(c, t)
}

// Resolve recorre la cadena en orden de prioridad y devuelve el primer
// cliente que empareja con la transacción, o nil. Lo usa el ajuste
// incremental para resolver transacciones que llegan sin customerId.
func Resolve(t *entity.Transaction, candidates []*entity.Customer) *entity.Customer {
	for _, match := range []func(*entity.Customer, *entity.Transaction) bool{
		MatchByID, MatchByDogAndPhone, MatchByDogAndOwner,
	} {
		for _, c := range candidates {
			if match(c, t) {
				return c
			}
		}
	}
	return nil
}
