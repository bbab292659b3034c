// Command seed loads a fixed set of example data: waste types, a citizen,
// a municipal operator, three collection points and two reports. It does
// not check for existing rows; set SEED_RESET=true to truncate first.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	cpentity "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/collectionpoint/entity"
	cprepo "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/collectionpoint/repo"
	rpentity "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/report/entity"
	rprepo "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/report/repo"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user"
	userentity "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/entity"
	userrepo "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/repo"
	wtentity "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/wastetype/entity"
	wtrepo "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/wastetype/repo"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/migrations"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/database"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

const seedPassword = "Password123!"

const truncateSQL = `TRUNCATE reports, reviews, collection_point_waste_types, schedules, addresses, collection_points, waste_types, refresh_sessions, operators, users CASCADE`

func main() {
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	sqlDB, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := migrations.Up(ctx, sqlDB); err != nil {
		sugar.Fatalf("migrate: %v", err)
	}

	db := sqlx.NewDb(sqlDB, "postgres")
	if reset, _ := strconv.ParseBool(os.Getenv("SEED_RESET")); reset {
		sugar.Warn("SEED_RESET set, truncating all tables")
		if _, err := db.ExecContext(ctx, truncateSQL); err != nil {
			sugar.Fatalf("truncate: %v", err)
		}
	}

	sugar.Info("starting database seed")
	if err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		return seed(ctx, tx, sugar)
	}); err != nil {
		sugar.Fatalf("seed failed: %v", err)
	}
	sugar.Info("database seed completed")
}

func ptr[T any](v T) *T { return &v }

func seed(ctx context.Context, tx *sqlx.Tx, log *zap.SugaredLogger) error {
	now := time.Now().UTC()

	wasteTypes := []*wtentity.WasteType{
		wtentity.NewWasteType(utilities.NewID(), "Plastica",
			"Contenitori in plastica, bottiglie, flaconi", "#FFD700", "recycle",
			"Svuotare e sciacquare i contenitori. Appiattire le bottiglie per ridurre il volume. Non inserire plastica sporca o con residui di cibo.",
			"Bottiglie di acqua e bibite, flaconi di shampoo e detersivi, vaschette per alimenti, sacchetti puliti, imballaggi in plastica"),
		wtentity.NewWasteType(utilities.NewID(), "Carta e Cartone",
			"Giornali, riviste, scatole di cartone", "#0066CC", "newspaper",
			"Appiattire le scatole per ottimizzare lo spazio. Non inserire carta sporca, oleata o plastificata. Rimuovere nastri adesivi e parti in plastica o metallo.",
			"Giornali, riviste, libri, quaderni, scatole di cartone, cartoni della pizza (se puliti), sacchetti di carta"),
		wtentity.NewWasteType(utilities.NewID(), "Vetro",
			"Bottiglie e contenitori in vetro", "#228B22", "wine-bottle",
			"Svuotare e sciacquare i contenitori. Non inserire ceramica, porcellana, specchi, lampadine o vetri di finestre.",
			"Bottiglie di vino, birra e acqua, vasetti di marmellata e conserve, contenitori in vetro per alimenti"),
		wtentity.NewWasteType(utilities.NewID(), "Organico",
			"Scarti di cibo e rifiuti biodegradabili", "#8B4513", "leaf",
			"Utilizzare sacchetti biodegradabili e compostabili. Non inserire liquidi in grande quantità, oli esausti o ossa di grandi dimensioni.",
			"Avanzi di cibo, bucce di frutta e verdura, fondi di caffè, filtri di tè, tovaglioli di carta sporchi, piccole ossa"),
		wtentity.NewWasteType(utilities.NewID(), "Indifferenziato",
			"Rifiuti non riciclabili negli altri contenitori", "#808080", "trash",
			"Conferire solo ciò che non può essere riciclato negli altri contenitori. Ridurre al minimo questa frazione differenziando correttamente.",
			"Pannolini e assorbenti, carta sporca o plastificata, ceramica e porcellana, giocattoli rotti, oggetti in gomma"),
		wtentity.NewWasteType(utilities.NewID(), "Metalli",
			"Lattine, barattoli, piccoli oggetti metallici", "#C0C0C0", "can-food",
			"Svuotare e sciacquare i contenitori. Separare eventuali parti non metalliche. Piccoli oggetti metallici vanno qui.",
			"Lattine di alluminio, barattoli metallici, coperchi, pentole e padelle, piccoli elettrodomestici (dove previsto)"),
	}
	wts := wtrepo.NewRepo(tx)
	allTypes := make([]int64, 0, len(wasteTypes))
	for _, wt := range wasteTypes {
		if err := wts.Create(ctx, wt); err != nil {
			return fmt.Errorf("waste type %s: %w", wt.Name, err)
		}
		allTypes = append(allTypes, wt.ID)
	}
	log.Infow("created waste types", "count", len(wasteTypes))

	hash, err := user.BcryptHasher{Cost: 10}.Hash(seedPassword)
	if err != nil {
		return err
	}
	users := userrepo.NewUserRepo(tx)
	citizen := &userentity.User{
		ID: utilities.NewID(), Email: "mario.rossi@example.com", Name: "Mario", Surname: "Rossi",
		Cellphone: ptr("+39 333 1234567"), Role: userentity.RoleUser, PasswordHash: &hash,
		OAuthProvider: "APP", CreatedAt: now, UpdatedAt: now,
	}
	operatorUser := &userentity.User{
		ID: utilities.NewID(), Email: "comune.roma@example.com", Name: "Comune", Surname: "di Roma",
		Role: userentity.RoleOperator, PasswordHash: &hash,
		OAuthProvider: "APP", CreatedAt: now, UpdatedAt: now,
	}
	for _, u := range []*userentity.User{citizen, operatorUser} {
		if err := users.Create(ctx, u); err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
	}
	if err := userrepo.NewOperatorRepo(tx).Create(ctx, &userentity.Operator{
		UserID:           operatorUser.ID,
		OrganizationName: "Comune di Roma - Ufficio Ambiente",
		VATNumber:        ptr("IT12345678901"),
		Telephone:        ptr("+39 06 67101"),
		Website:          ptr("https://www.comune.roma.it"),
	}); err != nil {
		return fmt.Errorf("operator: %w", err)
	}
	log.Info("created users")

	points := []struct {
		point      *cpentity.CollectionPoint
		address    *cpentity.Address
		schedule   *cpentity.Schedule
		wasteTypes []int64
	}{
		{
			point: &cpentity.CollectionPoint{
				Name:          "Isola Ecologica Centro",
				Description:   "Centro di raccolta principale in zona centro. Accetta tutti i tipi di rifiuti differenziati. Personale disponibile per assistenza.",
				Accessibility: ptr("Accessibile a persone con disabilità, ampio parcheggio disponibile"),
				Capacity:      ptr("Grande - oltre 50 utenti/ora"),
			},
			address: &cpentity.Address{Street: "Via Roma", Number: "123", City: "Roma", Zip: "00100", Country: "Italia", Latitude: 41.9028, Longitude: 12.4964},
			schedule: &cpentity.Schedule{
				Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true, Saturday: true,
				OpeningTime: ptr("08:00"), ClosingTime: ptr("20:00"),
				Notes: ptr("Chiuso la domenica e nei giorni festivi"),
			},
			wasteTypes: allTypes,
		},
		{
			point: &cpentity.CollectionPoint{
				Name:        "Cassonetti Via Milano",
				Description: "Postazione cassonetti stradali per raccolta differenziata. Svuotamento regolare 3 volte a settimana.",
				Capacity:    ptr("Media - 20-50 utenti/ora"),
			},
			address:  &cpentity.Address{Street: "Via Milano", Number: "45", City: "Roma", Zip: "00184", Country: "Italia", Latitude: 41.8919, Longitude: 12.5113},
			schedule: &cpentity.Schedule{IsAlwaysOpen: true, Notes: ptr("Cassonetti stradali accessibili 24/7")},
			// Plastica, Carta, Vetro, Indifferenziato
			wasteTypes: []int64{allTypes[0], allTypes[1], allTypes[2], allTypes[4]},
		},
		{
			point: &cpentity.CollectionPoint{
				Name:          "Centro Raccolta Quartiere Nord",
				Description:   "Centro di raccolta di quartiere con area dedicata ai rifiuti ingombranti e RAEE.",
				Accessibility: ptr("Parcheggio disponibile, rampa di accesso"),
				Capacity:      ptr("Media - 30 utenti/ora"),
			},
			address: &cpentity.Address{Street: "Via Tiburtina", Number: "200", City: "Roma", Zip: "00185", Country: "Italia", Latitude: 41.9109, Longitude: 12.5268},
			schedule: &cpentity.Schedule{
				Monday: true, Wednesday: true, Friday: true, Saturday: true,
				OpeningTime: ptr("09:00"), ClosingTime: ptr("18:00"),
				Notes: ptr("Aperto lunedì, mercoledì, venerdì e sabato"),
			},
			wasteTypes: allTypes,
		},
	}
	cps := cprepo.NewRepo(tx)
	for _, p := range points {
		p.point.ID = utilities.NewID()
		p.point.OperatorID = operatorUser.ID
		p.point.IsActive = true
		p.point.CreatedAt, p.point.UpdatedAt = now, now
		if err := cps.Insert(ctx, p.point); err != nil {
			return fmt.Errorf("collection point %s: %w", p.point.Name, err)
		}
		p.address.CollectionPointID = p.point.ID
		if err := cps.UpsertAddress(ctx, p.address); err != nil {
			return err
		}
		p.schedule.CollectionPointID = p.point.ID
		if err := cps.UpsertSchedule(ctx, p.schedule); err != nil {
			return err
		}
		if err := cps.ReplaceWasteTypes(ctx, p.point.ID, p.wasteTypes); err != nil {
			return err
		}
	}
	log.Infow("created collection points", "count", len(points))

	streetBins := points[1].point.ID
	reports := rprepo.NewRepo(tx)
	for _, rp := range []*rpentity.Report{
		{
			UserID: citizen.ID, CollectionPointID: streetBins, Type: rpentity.TypeFullBin,
			Description: "Il cassonetto della plastica è completamente pieno e trabocca. Alcuni rifiuti sono caduti a terra.",
			Status:      rpentity.StatusPending,
		},
		{
			UserID: citizen.ID, CollectionPointID: streetBins, Type: rpentity.TypeNeedsCleaning,
			Description: "Area intorno ai cassonetti sporca, necessita pulizia",
			Status:      rpentity.StatusInProgress, ResolvedBy: &operatorUser.ID,
		},
	} {
		rp.ID = utilities.NewID()
		rp.CreatedAt, rp.UpdatedAt = now, now
		if err := reports.Create(ctx, rp); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	log.Info("created example reports")
	return nil
}
