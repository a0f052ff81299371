// Package models содержит структуры данных, которые сервер отдаёт клиентам.
// Пакет не содержит бизнес-логику.
package models

// PoolStats представляет снимок счётчиков одного пула ресурсов.
type PoolStats struct {
	// Size содержит число свободных ресурсов в пуле.
	Size int `json:"size"`

	// Hits содержит число выдач ресурса из пула без вызова фабрики.
	Hits int64 `json:"hits"`

	// Created содержит число ресурсов, созданных фабрикой.
	Created int64 `json:"created"`

	FactoryErrors int64 `json:"factory_errors"`
	Returned      int64 `json:"returned"`
	Rejected      int64 `json:"rejected"`
}

// HostStats описывает память хоста, на котором работает сервер.
type HostStats struct {
	TotalMemory     uint64  `json:"total_memory"`
	AvailableMemory uint64  `json:"available_memory"`
	UsedPercent     float64 `json:"used_percent"`
}

// StatsResponse — ответ эндпоинта /stats.
type StatsResponse struct {
	Buffers PoolStats  `json:"buffers"`
	Gzip    PoolStats  `json:"gzip"`
	Conns   *PoolStats `json:"conns,omitempty"`
	Host    *HostStats `json:"host,omitempty"`
}
