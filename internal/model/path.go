package model

import "strings"

// HomePath — главная страница с подборкой товаров
const HomePath = "/"

const productPathPrefix = "/products/"

// ProductPath возвращает адрес страницы товара
func ProductPath(id string) string {
	return productPathPrefix + id
}

// ProductIDFromPath извлекает ID товара из адреса страницы
func ProductIDFromPath(path string) (string, bool) {
	id, ok := strings.CutPrefix(path, productPathPrefix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
