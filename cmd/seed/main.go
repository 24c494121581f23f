package main

import (
	"fmt"
	"log"

	"github.com/coderr-app/coderr-backend/config"
	"github.com/coderr-app/coderr-backend/internal/app/model"
	"github.com/coderr-app/coderr-backend/internal/db"
	"github.com/coderr-app/coderr-backend/pkg/util"
	"gorm.io/datatypes"
)

// Seeds a small demo marketplace: two providers with offers and variants,
// two customers with orders and reviews.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Print("This will insert demo data. Proceed? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Seed cancelled.")
		return
	}

	gdb := db.GetDB()

	passwordHash, err := util.HashPassword("demopass123")
	if err != nil {
		log.Fatal("Failed to hash demo password:", err)
	}

	providers := []struct {
		username, email, company string
	}{
		{"webdesign_gmbh", "kontakt@webdesign.example", "Webdesign GmbH"},
		{"code_factory", "hello@codefactory.example", "Code Factory"},
	}

	customers := []struct {
		username, email, first, last string
	}{
		{"max_customer", "max@customers.example", "Max", "Mustermann"},
		{"erika_customer", "erika@customers.example", "Erika", "Musterfrau"},
	}

	var businessUsers []model.User
	for _, p := range providers {
		user := model.User{
			Username:     p.username,
			Email:        p.email,
			PasswordHash: passwordHash,
		}
		if err := gdb.Where("username = ?", p.username).FirstOrCreate(&user, user).Error; err != nil {
			log.Fatal("Failed to seed provider:", err)
		}
		profile := model.BusinessProfile{
			UserID:       user.ID,
			CompanyName:  p.company,
			Location:     "Berlin",
			WorkingHours: "9-17",
			Tel:          "030 1234567",
		}
		if err := gdb.Where("user_id = ?", user.ID).FirstOrCreate(&profile, profile).Error; err != nil {
			log.Fatal("Failed to seed business profile:", err)
		}
		businessUsers = append(businessUsers, user)
	}

	var customerUsers []model.User
	for _, c := range customers {
		user := model.User{
			Username:     c.username,
			Email:        c.email,
			FirstName:    c.first,
			LastName:     c.last,
			PasswordHash: passwordHash,
		}
		if err := gdb.Where("username = ?", c.username).FirstOrCreate(&user, user).Error; err != nil {
			log.Fatal("Failed to seed customer:", err)
		}
		profile := model.CustomerProfile{
			UserID:    user.ID,
			FirstName: c.first,
			LastName:  c.last,
		}
		if err := gdb.Where("user_id = ?", user.ID).FirstOrCreate(&profile, profile).Error; err != nil {
			log.Fatal("Failed to seed customer profile:", err)
		}
		customerUsers = append(customerUsers, user)
	}

	basePrice := 100.0
	baseDelivery := 7
	offer := model.Offer{
		Title:              "Website Design",
		Description:        "Professionelles Website-Design fuer Ihr Unternehmen.",
		Price:              &basePrice,
		DeliveryTimeInDays: &baseDelivery,
		UserID:             businessUsers[0].ID,
	}
	if err := gdb.Where("title = ? AND user_id = ?", offer.Title, offer.UserID).FirstOrCreate(&offer, offer).Error; err != nil {
		log.Fatal("Failed to seed offer:", err)
	}

	tiers := []struct {
		tier     model.OfferType
		title    string
		price    float64
		delivery int
		revs     int
		features []string
	}{
		{model.OfferTypeBasic, "Basic Design", 100, 7, 2, []string{"Logo Design", "Visitenkarte"}},
		{model.OfferTypeStandard, "Standard Design", 200, 5, 5, []string{"Logo Design", "Visitenkarte", "Briefpapier"}},
		{model.OfferTypePremium, "Premium Design", 500, 3, 10, []string{"Logo Design", "Visitenkarte", "Briefpapier", "Flyer"}},
	}

	var details []model.OfferDetail
	for _, t := range tiers {
		price := t.price
		delivery := t.delivery
		revs := t.revs
		detail := model.OfferDetail{
			OfferID:            offer.ID,
			VariantTitle:       t.title,
			VariantPrice:       &price,
			DeliveryTimeInDays: &delivery,
			RevisionLimit:      &revs,
			OfferType:          t.tier,
			Features:           datatypes.JSONSlice[string](t.features),
		}
		if err := gdb.Where("offer_id = ? AND offer_type = ?", offer.ID, t.tier).FirstOrCreate(&detail, detail).Error; err != nil {
			log.Fatal("Failed to seed offer detail:", err)
		}
		details = append(details, detail)
	}

	order := model.Order{
		UserID:         customerUsers[0].ID,
		BusinessUserID: offer.UserID,
		OfferID:        offer.ID,
		OfferDetailID:  details[0].ID,
		Status:         model.OrderStatusInProgress,
		Option:         details[0].OfferType,
		Features:       details[0].Features,
	}
	if err := gdb.Where("user_id = ? AND offer_detail_id = ?", order.UserID, order.OfferDetailID).FirstOrCreate(&order, order).Error; err != nil {
		log.Fatal("Failed to seed order:", err)
	}

	review := model.Review{
		Rating:         5,
		Description:    "Sehr professionelle Arbeit, gerne wieder!",
		BusinessUserID: offer.UserID,
		ReviewerID:     customerUsers[0].ID,
		OfferID:        offer.ID,
	}
	if err := gdb.Where("business_user_id = ? AND reviewer_id = ?", review.BusinessUserID, review.ReviewerID).FirstOrCreate(&review, review).Error; err != nil {
		log.Fatal("Failed to seed review:", err)
	}

	fmt.Println("Seed completed successfully!")
	fmt.Printf("Providers: %d, customers: %d, offers: 1, details: %d\n", len(businessUsers), len(customerUsers), len(details))
}
