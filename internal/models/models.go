package models

import "time"

type Product struct {
	ID    uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string  `gorm:"uniqueIndex;not null"     json:"name"`
	Price float64 `gorm:"not null"                 json:"price"`
	Stock int     `gorm:"not null"                 json:"stock"`
}

type Order struct {
	ID           string      `gorm:"primaryKey"               json:"id"`
	CustomerName string      `gorm:"not null"                 json:"customer_name"`
	Email        string      `gorm:"index;not null"           json:"email"`
	OrderCode    string      `gorm:"index;not null"           json:"order_code"`
	Total        float64     `gorm:"not null"                 json:"total"`
	Timestamp    time.Time   `gorm:"index;not null"           json:"timestamp"`
	Items        []OrderItem `gorm:"foreignKey:OrderID"       json:"items"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID   string  `gorm:"index;not null"              json:"order_id"`
	ProductID string  `gorm:"not null"                    json:"product_id"`
	Quantity  int     `gorm:"not null;check:quantity>0"   json:"quantity"`
	Price     float64 `gorm:"not null"                    json:"price"`
	Stock     int     `json:"stock"`
}
