// seed puebla la base con datos de demostración: una cuenta de cafetería, un
// estudiante vinculado a su representante, un menú corto y una recarga inicial.
//
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jcastell/cafeteria-api/internal/domain/entity"
	"github.com/jcastell/cafeteria-api/internal/infrastructure/postgres"
	"github.com/jcastell/cafeteria-api/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)

	now := time.Now()

	cafeteria := &entity.User{
		ID:           uuid.New().String(),
		Email:        "cafeteria@test.com",
		PasswordHash: mustHash("cafeteria123"),
		Role:         entity.RoleCafeteria,
		FirstName:    "Cafetería",
		LastName:     "Central",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	parent := &entity.User{
		ID:           uuid.New().String(),
		Email:        "parent@test.com",
		PasswordHash: mustHash("parent123"),
		Role:         entity.RoleParent,
		FirstName:    "María",
		LastName:     "García",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	student := &entity.User{
		ID:           uuid.New().String(),
		Email:        "student@test.com",
		PasswordHash: mustHash("student123"),
		Role:         entity.RoleStudent,
		FirstName:    "Juan",
		LastName:     "García",
		ParentID:     parent.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, u := range []*entity.User{cafeteria, parent, student} {
		if err := userRepo.Create(ctx, u); err != nil {
			fmt.Fprintf(os.Stderr, "crear usuario %s: %v\n", u.Email, err)
			os.Exit(1)
		}
	}
	// Vínculo bidireccional representante ↔ estudiante.
	parent.ChildID = student.ID
	parent.UpdatedAt = time.Now()
	if err := userRepo.Update(ctx, parent); err != nil {
		fmt.Fprintf(os.Stderr, "vincular representante: %v\n", err)
		os.Exit(1)
	}

	products := []*entity.Product{
		{Name: "Hamburguesa", Description: "Hamburguesa de carne con queso", Price: dec("25.00"), Cost: dec("12.00"), Stock: 30},
		{Name: "Papas fritas", Description: "Porción mediana", Price: dec("10.00"), Cost: dec("4.00"), Stock: 50},
		{Name: "Jugo natural", Description: "Naranja o mora", Price: dec("8.00"), Cost: dec("3.00"), Stock: 40},
		{Name: "Ensalada de frutas", Description: "Fruta de temporada", Price: dec("12.00"), Cost: dec("5.00"), Stock: 20},
	}
	for _, p := range products {
		p.ID = uuid.New().String()
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := productRepo.Create(ctx, p); err != nil {
			fmt.Fprintf(os.Stderr, "crear producto %s: %v\n", p.Name, err)
			os.Exit(1)
		}
	}

	// Recarga inicial para poder pagar pedidos de inmediato.
	recharge := &entity.TokenTransaction{
		ID:        uuid.New().String(),
		UserID:    student.ID,
		Type:      entity.TransactionRecharge,
		Amount:    dec("100.00"),
		CreatedAt: now,
	}
	if err := tokenRepo.Append(ctx, recharge); err != nil {
		fmt.Fprintf(os.Stderr, "recarga inicial: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Datos de demostración creados:")
	fmt.Printf("  cafetería:     %s / cafeteria123\n", cafeteria.Email)
	fmt.Printf("  representante: %s / parent123\n", parent.Email)
	fmt.Printf("  estudiante:    %s / student123 (saldo inicial 100.00)\n", student.Email)
}

func mustHash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
