package utils

import (
	"strconv"
	"strings"
)

func BuildProductsListCacheKey(q, category string, promo bool, limit, offset int) string {
	return "products:list:v1:q=" + strings.ToLower(strings.TrimSpace(q)) +
		":category=" + strings.ToLower(strings.TrimSpace(category)) +
		":promo=" + strconv.FormatBool(promo) +
		":limit=" + strconv.Itoa(limit) +
		":offset=" + strconv.Itoa(offset)
}

func BuildProductCacheKey(id string) string {
	return "products:item:v1:" + id
}
