// Command seed provisions a fresh database with the admin account and a
// small demo catalog so the capture flow can be exercised end to end.
package main

import (
	"flag"
	"log"

	"gorm.io/gorm"

	"github.com/agroflow/logicapture/internal/config"
	"github.com/agroflow/logicapture/internal/database"
	"github.com/agroflow/logicapture/internal/models"
	"github.com/agroflow/logicapture/internal/utils"
)

func main() {
	adminPass := flag.String("admin-password", "admin123", "Initial password for the admin account")
	demo := flag.Bool("demo", true, "Seed demo drivers, carriers, vehicles and booking references")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(
		&models.User{},
		&models.Driver{},
		&models.Carrier{},
		&models.Vehicle{},
		&models.Record{},
		&models.UniqueValue{},
		&models.AuditEvent{},
		&models.BookingRef{},
		&models.BookingDAM{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if err := seedAdmin(db.DB, *adminPass); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	if *demo {
		if err := seedCatalog(db.DB); err != nil {
			log.Fatalf("Failed to seed demo catalog: %v", err)
		}
	}

	log.Println("✅ Seed complete")
}

func seedAdmin(db *gorm.DB, password string) error {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("⚠️  Admin user already exists, skipping")
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Username:       "admin",
		PasswordHash:   hash,
		Name:           "Administrador",
		Role:           models.RoleAdmin,
		Active:         true,
		MustChangePass: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("✅ Admin user created (username: admin)")
	return nil
}

func seedCatalog(db *gorm.DB) error {
	carriers := []models.Carrier{
		{RUC: "20100038146", SapCode: "PRV-0101", Name: "TRANSPORTES ANDINOS S.A.C.", RegistryEntry: "MTC-0045-2019"},
		{RUC: "20481122334", SapCode: "PRV-0204", Name: "LOGISTICA DEL NORTE E.I.R.L.", RegistryEntry: "MTC-0112-2021"},
	}
	for i := range carriers {
		if err := db.Where("ruc = ?", carriers[i].RUC).FirstOrCreate(&carriers[i]).Error; err != nil {
			return err
		}
	}

	drivers := []models.Driver{
		{DNI: "45879632", Name: "JUAN PEREZ QUISPE", SapName: "PEREZ QUISPE, JUAN", License: "Q45879632"},
		{DNI: "40112233", Name: "MARIA TORRES DIAZ", SapName: "TORRES DIAZ, MARIA", License: "Q40112233"},
	}
	for i := range drivers {
		if err := db.Where("dni = ?", drivers[i].DNI).FirstOrCreate(&drivers[i]).Error; err != nil {
			return err
		}
	}

	vehicles := []models.Vehicle{
		{TractorPlate: "ABC-123", TrailerPlate: "XYZ-987", Plates: "ABC-123/XYZ-987", Brand: "VOLVO", VehicleCert: "CV-2023-0456", CarrierID: &carriers[0].ID},
		{TractorPlate: "DEF-456", TrailerPlate: "UVW-654", Plates: "DEF-456/UVW-654", Brand: "SCANIA", VehicleCert: "CV-2024-0110", CarrierID: &carriers[1].ID},
	}
	for i := range vehicles {
		if err := db.Where("tractor_plate = ? AND trailer_plate = ?", vehicles[i].TractorPlate, vehicles[i].TrailerPlate).
			FirstOrCreate(&vehicles[i]).Error; err != nil {
			return err
		}
	}

	refs := []models.BookingRef{
		{Booking: "MEDUJ1234567", OBeta: "OB-778812", AWB: "045-77881123"},
		{Booking: "MSCUW7654321", OBeta: "OB-990021", AWB: "045-99002145"},
	}
	for i := range refs {
		if err := db.Where("booking = ?", refs[i].Booking).FirstOrCreate(&refs[i]).Error; err != nil {
			return err
		}
	}

	dams := []models.BookingDAM{
		{Booking: "MEDUJ1234567", DAM: "235-2026-10-045678"},
		{Booking: "MSCUW7654321", DAM: "235-2026-10-051234"},
	}
	for i := range dams {
		if err := db.Where("booking = ?", dams[i].Booking).FirstOrCreate(&dams[i]).Error; err != nil {
			return err
		}
	}

	log.Println("✅ Demo catalog seeded")
	return nil
}
