// Package listing fournit les aides communes de recherche et de
// pagination des pages de liste: filtre par sous-chaîne insensible à la
// casse, découpage en pages et fenêtre glissante de numéros de page.
package listing

import "strings"

// WindowSize est le nombre maximal de numéros de page affichés.
const WindowSize = 5

// Filter retient les éléments dont au moins un champ contient la
// requête, sans tenir compte de la casse. Une requête vide ou blanche
// restitue la liste complète. L'opération est idempotente.
func Filter[T any](items []T, query string, fields func(T) []string) []T {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	var filtered []T
	for _, item := range items {
		for _, field := range fields(item) {
			if strings.Contains(strings.ToLower(field), query) {
				filtered = append(filtered, item)
				break
			}
		}
	}
	return filtered
}

// Paginate découpe la tranche [(page-1)*size, page*size). Les pages
// commencent à 1; une page hors bornes donne une tranche vide.
func Paginate[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(items) {
		return nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages compte les pages nécessaires pour count éléments.
func TotalPages(count, size int) int {
	if count <= 0 || size < 1 {
		return 0
	}
	return (count + size - 1) / size
}

// PageWindow retourne jusqu'à cinq numéros de page centrés sur la page
// courante, bornés à [1, total].
func PageWindow(current, total int) []int {
	if total < 1 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	start := current - WindowSize/2
	if start > total-WindowSize+1 {
		start = total - WindowSize + 1
	}
	if start < 1 {
		start = 1
	}

	end := start + WindowSize - 1
	if end > total {
		end = total
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
