//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/artemk/movebid/internal/config"
	"github.com/artemk/movebid/internal/database"
	"github.com/artemk/movebid/internal/identity"
	"github.com/artemk/movebid/internal/models"
	"github.com/artemk/movebid/internal/repository"
	"github.com/lib/pq"
)

var (
	firstNames = []string{"Rahul", "Priya", "Amit", "Sneha", "Vikram", "Anita", "Raj", "Neha", "Suresh", "Kavita",
		"Arun", "Deepa", "Kiran", "Meera", "Sanjay", "Ritu", "Vijay", "Pooja", "Manoj", "Swati"}
	lastNames = []string{"Kumar", "Sharma", "Patel", "Singh", "Reddy", "Rao", "Gupta", "Joshi", "Nair", "Menon"}

	contractTitles = []string{
		"Studio apartment move", "Two-bedroom household move", "Office relocation",
		"Piano transport", "Warehouse pallet shift", "Furniture delivery",
	}
	addresses = []string{
		"12 MG Road, Bangalore", "44 Residency Road, Bangalore", "7 Brigade Road, Bangalore",
		"101 Koramangala 4th Block, Bangalore", "23 Indiranagar 100ft Road, Bangalore",
		"5 Whitefield Main Road, Bangalore",
	}
)

func randomName() string {
	return fmt.Sprintf("%s %s", firstNames[rand.Intn(len(firstNames))], lastNames[rand.Intn(len(lastNames))])
}

func main() {
	rand.Seed(time.Now().UnixNano())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.DatabaseURL, cfg.DBMaxConnections, cfg.DBMaxIdleConnections)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db.DB)
	contractRepo := repository.NewContractRepository(db.DB)
	offerRepo := repository.NewOfferRepository(db.DB)
	signer := identity.NewSigner(cfg.JWTSecret, 24*time.Hour)

	// Requesters
	log.Println("Creating 10 requesters...")
	requesterIDs := make([]string, 0)
	for i := 0; i < 10; i++ {
		user := &models.User{
			Phone: fmt.Sprintf("98%08d", rand.Intn(100000000)),
			Name:  randomName(),
			Role:  models.RoleRequester,
			Requester: &models.RequesterProfile{
				DefaultAddress: addresses[rand.Intn(len(addresses))],
			},
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Printf("Failed to create requester: %v", err)
			continue
		}
		requesterIDs = append(requesterIDs, user.ID)
	}
	log.Printf("Created %d requesters", len(requesterIDs))

	// Drivers
	log.Println("Creating 20 drivers...")
	driverIDs := make([]string, 0)
	for i := 0; i < 20; i++ {
		user := &models.User{
			Phone: fmt.Sprintf("91%08d", rand.Intn(100000000)),
			Name:  randomName(),
			Role:  models.RoleDriver,
			Driver: &models.DriverProfile{
				LicenseNumber: fmt.Sprintf("DL%07d", rand.Intn(10000000)),
				VehicleNumber: fmt.Sprintf("KA%02d%s%04d", rand.Intn(99), string(rune('A'+rand.Intn(26)))+string(rune('A'+rand.Intn(26))), rand.Intn(10000)),
				CapacityKg:    float64(500 + rand.Intn(2500)),
			},
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Printf("Failed to create driver: %v", err)
			continue
		}
		driverIDs = append(driverIDs, user.ID)
	}
	log.Printf("Created %d drivers", len(driverIDs))

	if len(requesterIDs) == 0 || len(driverIDs) == 0 {
		log.Fatal("No users created, aborting")
	}

	// Contracts
	log.Println("Creating 15 contracts...")
	contractIDs := make([]string, 0)
	for i := 0; i < 15; i++ {
		contract := &models.Contract{
			RequesterID:     requesterIDs[rand.Intn(len(requesterIDs))],
			Title:           contractTitles[rand.Intn(len(contractTitles))],
			Description:     "Seeded test contract",
			MassKg:          float64(50 + rand.Intn(950)),
			VolumeM3:        1 + rand.Float64()*19,
			Fragile:         rand.Float64() > 0.7,
			CoolingRequired: rand.Float64() > 0.9,
			RideAlong:       rand.Float64() > 0.8,
			ManPower:        rand.Intn(4),
			Price:           float64(1000 + rand.Intn(9000)),
			Collateral:      float64(rand.Intn(5000)),
			PickupAddress:   addresses[rand.Intn(len(addresses))],
			DropoffAddress:  addresses[rand.Intn(len(addresses))],
			MoveAt:          time.Now().Add(time.Duration(1+rand.Intn(14)) * 24 * time.Hour),
			PhotoURLs:       pq.StringArray{},
		}
		if err := contractRepo.Create(ctx, contract); err != nil {
			log.Printf("Failed to create contract: %v", err)
			continue
		}
		contractIDs = append(contractIDs, contract.ID)
	}
	log.Printf("Created %d contracts", len(contractIDs))

	// Offers: a few drivers bid on each contract
	log.Println("Creating offers...")
	offerCount := 0
	for _, contractID := range contractIDs {
		bidders := 1 + rand.Intn(3)
		seen := map[string]bool{}
		for b := 0; b < bidders; b++ {
			driverID := driverIDs[rand.Intn(len(driverIDs))]
			if seen[driverID] {
				continue
			}
			seen[driverID] = true

			offer := &models.Offer{ContractID: contractID, DriverID: driverID}
			if err := offerRepo.Create(ctx, offer); err != nil {
				log.Printf("Failed to create offer: %v", err)
				continue
			}
			offerCount++
		}
	}
	log.Printf("Created %d offers", offerCount)

	// Summary with ready-to-use tokens
	requesterToken, _ := signer.Issue(requesterIDs[0], models.RoleRequester)
	driverToken, _ := signer.Issue(driverIDs[0], models.RoleDriver)

	log.Println("\n=== Seed Data Summary ===")
	log.Printf("Requesters: %d, Drivers: %d, Contracts: %d, Offers: %d",
		len(requesterIDs), len(driverIDs), len(contractIDs), offerCount)
	log.Println("\nSample Requester ID:", requesterIDs[0])
	log.Println("Sample Requester Token:", requesterToken)
	log.Println("\nSample Driver ID:", driverIDs[0])
	log.Println("Sample Driver Token:", driverToken)
	log.Println("\nSample Contract ID:", contractIDs[0])
	log.Println("\nYou can now test with these IDs!")
}
