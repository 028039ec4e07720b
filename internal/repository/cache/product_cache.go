package cache

import (
	"sync"

	"github.com/asquebay/simple-storefront/internal/model"
)

// ProductCache — потокобезопасный in-memory кэш карточек товаров
// записи сбрасываются при изменении товара или по событию ревалидации
type ProductCache struct {
	// ключ — string (ID товара), значение — model.Product
	storage sync.Map
}

// NewProductCache создаёт новый экземпляр кэша
func NewProductCache() *ProductCache {
	return &ProductCache{}
}

// Set добавляет или обновляет товар в кэше
func (c *ProductCache) Set(product model.Product) {
	c.storage.Store(product.ID, product)
}

// Get извлекает товар из кэша по его ID
// возвращает товар и true, если он найден, иначе пустую структуру и false
func (c *ProductCache) Get(id string) (model.Product, bool) {
	value, ok := c.storage.Load(id)
	if !ok {
		return model.Product{}, false
	}

	// выполняем безопасное приведение типа
	product, ok := value.(model.Product)
	return product, ok
}

// Delete убирает товар из кэша, отсутствие записи не ошибка
func (c *ProductCache) Delete(id string) {
	c.storage.Delete(id)
}

// LoadAll загружает в кэш срез товаров
// используется для прогрева кэша витриной при старте сервиса
func (c *ProductCache) LoadAll(products []model.Product) {
	for _, p := range products {
		c.Set(p)
	}
}
