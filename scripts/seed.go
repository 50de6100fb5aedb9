package main

import (
	"context"
	"os"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/adapters/database"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/observability"
	"github.com/zatekoja/healthcare-chatbot/backend/pkg/config"
)

type doctorSeed struct {
	doctor entities.Doctor
	// days worked (0 is Monday), 09:00-13:00 and 14:00-17:00
	days []int
}

type packageSeed struct {
	pkg   entities.HealthPackage
	tests []entities.HealthPackageTest
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("healthcare-chatbot-seed", cfg.Server.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				callback_requests,
				health_package_bookings,
				health_package_tests,
				health_packages,
				chat_sessions,
				questionnaires,
				appointments,
				doctor_time_slots,
				patients,
				doctors,
				specialities
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	specialityRepo := database.NewSpecialityAdapter(pgClient)
	doctorRepo := database.NewDoctorAdapter(pgClient)
	timeSlotRepo := database.NewTimeSlotAdapter(pgClient)
	questionnaireRepo := database.NewQuestionnaireAdapter(pgClient)
	patientRepo := database.NewPatientAdapter(pgClient)

	// 1. Specialities
	specialityIDs := make(map[string]int64)
	for _, s := range []entities.Speciality{
		{Name: "General Medicine", Description: "Primary care for common illnesses", Icon: "stethoscope", IsActive: true},
		{Name: "Cardiology", Description: "Heart and blood vessel care", Icon: "heart", IsActive: true},
		{Name: "Dermatology", Description: "Skin, hair and nail conditions", Icon: "droplet", IsActive: true},
		{Name: "Pediatrics", Description: "Care for infants, children and adolescents", Icon: "baby", IsActive: true},
		{Name: "Orthopedics", Description: "Bones, joints and muscles", Icon: "bone", IsActive: true},
	} {
		if err := specialityRepo.Create(ctx, &s); err != nil {
			log.Warn().Err(err).Str("speciality", s.Name).Msg("failed to create speciality")
			continue
		}
		specialityIDs[s.Name] = s.ID
	}

	// 2. Doctors and weekly schedules
	doctors := []doctorSeed{
		{doctor: entities.Doctor{Name: "Dr. Anita Rao", Specialization: "General Medicine", Qualification: "MBBS, MD", ExperienceYears: 12, Phone: "+919800000001", Email: "anita.rao@clinic.example", IsAvailable: true}, days: []int{0, 1, 2, 3, 4}},
		{doctor: entities.Doctor{Name: "Dr. Vikram Shah", Specialization: "Cardiology", Qualification: "MBBS, DM Cardiology", ExperienceYears: 18, Phone: "+919800000002", Email: "vikram.shah@clinic.example", IsAvailable: true}, days: []int{0, 2, 4}},
		{doctor: entities.Doctor{Name: "Dr. Meera Iyer", Specialization: "Dermatology", Qualification: "MBBS, MD Dermatology", ExperienceYears: 9, Phone: "+919800000003", Email: "meera.iyer@clinic.example", IsAvailable: true}, days: []int{1, 3, 5}},
		{doctor: entities.Doctor{Name: "Dr. Kiran Patel", Specialization: "Pediatrics", Qualification: "MBBS, DCH", ExperienceYears: 15, Phone: "+919800000004", Email: "kiran.patel@clinic.example", IsAvailable: true}, days: []int{0, 1, 2, 3, 4, 5}},
		{doctor: entities.Doctor{Name: "Dr. Arjun Menon", Specialization: "Orthopedics", Qualification: "MBBS, MS Ortho", ExperienceYears: 20, Phone: "+919800000005", Email: "arjun.menon@clinic.example", IsAvailable: false}, days: []int{1, 3}},
	}

	for _, seed := range doctors {
		d := seed.doctor
		if id, ok := specialityIDs[d.Specialization]; ok {
			d.SpecialityID = &id
		}
		if err := doctorRepo.Create(ctx, &d); err != nil {
			log.Warn().Err(err).Str("doctor", d.Name).Msg("failed to create doctor")
			continue
		}

		for _, day := range seed.days {
			for _, window := range [][2]entities.ClockTime{
				{entities.NewClockTime(9, 0), entities.NewClockTime(13, 0)},
				{entities.NewClockTime(14, 0), entities.NewClockTime(17, 0)},
			} {
				slot := entities.TimeSlotDefinition{
					DoctorID:            d.ID,
					DayOfWeek:           day,
					StartTime:           window[0],
					EndTime:             window[1],
					SlotDurationMinutes: 30,
					IsAvailable:         true,
				}
				if err := timeSlotRepo.Create(ctx, &slot); err != nil {
					log.Warn().Err(err).Str("doctor", d.Name).Int("day", day).Msg("failed to create time slot")
				}
			}
		}
	}

	// 3. Questionnaires
	for _, q := range []entities.Questionnaire{
		{
			TriggerKeywords:  "hello,hi,hey,good morning,good afternoon,good evening,greetings",
			Question:         "Hello! I'm your healthcare assistant. How can I help you today?",
			ResponseTemplate: "Hello! I can help you book appointments, explore health packages, understand symptoms or request a callback. What would you like to do?",
			Category:         entities.QuestionnaireCategoryGeneral,
			Priority:         1,
		},
		{
			TriggerKeywords:  "appointment,book appointment,schedule,see doctor,consultation",
			Question:         "I'd be happy to help you book an appointment. Which speciality do you need?",
			ResponseTemplate: "To book an appointment tell me the speciality, your preferred date and whether you prefer morning or afternoon. We have General Medicine, Cardiology, Dermatology, Pediatrics and Orthopedics.",
			Category:         entities.QuestionnaireCategoryAppointment,
			Priority:         1,
		},
		{
			TriggerKeywords:  "symptoms,pain,ache,fever,cough,headache,feeling unwell",
			Question:         "I understand you're not feeling well. Can you describe your symptoms?",
			ResponseTemplate: "This is not a medical diagnosis. Please describe your main symptom, how long you have had it and how severe it is. I can suggest which doctor to see and help you book an appointment.",
			Category:         entities.QuestionnaireCategorySymptoms,
			Priority:         1,
		},
		{
			TriggerKeywords:  "chest pain,breathing difficulty,shortness of breath,emergency,urgent,accident",
			Question:         "This may be an emergency. Are you safe right now?",
			ResponseTemplate: "If this is life threatening call the ambulance on 108 immediately or go to the nearest emergency room. For urgent but non-life-threatening issues I can book the earliest available appointment.",
			Category:         entities.QuestionnaireCategoryEmergency,
			Priority:         1,
		},
		{
			TriggerKeywords:  "medicine,medication,prescription,tablet,side effects",
			Question:         "What would you like to know about your medication?",
			ResponseTemplate: "I can share general information about medications, but I cannot prescribe. For severe side effects seek medical help immediately, otherwise please consult your prescribing doctor.",
			Category:         entities.QuestionnaireCategoryMedication,
			Priority:         2,
		},
		{
			TriggerKeywords:  "health package,health checkup,full body checkup,preventive care",
			Question:         "Which health checkup are you interested in?",
			ResponseTemplate: "We offer Basic, Comprehensive and Executive health checkups with home sample collection. Ask me for details of any package or book one directly.",
			Category:         entities.QuestionnaireCategoryGeneral,
			Priority:         3,
		},
	} {
		q.IsActive = true
		if err := questionnaireRepo.Create(ctx, &q); err != nil {
			log.Warn().Err(err).Str("category", string(q.Category)).Msg("failed to create questionnaire")
		}
	}

	// 4. Health packages (catalogue is read-only through the API)
	db := goqu.New("postgres", pgClient.DB())
	for _, seed := range []packageSeed{
		{
			pkg: entities.HealthPackage{Name: "Basic Health Checkup", Description: "Essential screening for young adults", Price: 2500, AgeGroup: "18-40", FastingRequired: true, HomeCollectionAvailable: true, LabVisitRequired: false, ReportDeliveryDays: 1},
			tests: []entities.HealthPackageTest{
				{TestName: "Complete Blood Count", TestCategory: "Hematology"},
				{TestName: "Fasting Blood Sugar", TestCategory: "Diabetes"},
				{TestName: "Blood Pressure", TestCategory: "Vitals"},
			},
		},
		{
			pkg: entities.HealthPackage{Name: "Comprehensive Health Checkup", Description: "Basic checkup with organ function panels", Price: 5000, AgeGroup: "25-50", FastingRequired: true, HomeCollectionAvailable: true, LabVisitRequired: true, ReportDeliveryDays: 2},
			tests: []entities.HealthPackageTest{
				{TestName: "Complete Blood Count", TestCategory: "Hematology"},
				{TestName: "Lipid Profile", TestCategory: "Cardiac"},
				{TestName: "Kidney Function Test", TestCategory: "Renal"},
				{TestName: "Liver Function Test", TestCategory: "Hepatic"},
				{TestName: "Vitamin D", TestCategory: "Vitamins", IsOptional: true},
			},
		},
		{
			pkg: entities.HealthPackage{Name: "Executive Health Checkup", Description: "Cardiac and thyroid screening for professionals", Price: 8000, AgeGroup: "30-60", FastingRequired: true, LabVisitRequired: true, ReportDeliveryDays: 2},
			tests: []entities.HealthPackageTest{
				{TestName: "Lipid Profile", TestCategory: "Cardiac"},
				{TestName: "Thyroid Profile", TestCategory: "Endocrine"},
				{TestName: "ECG", TestCategory: "Cardiac"},
				{TestName: "Treadmill Test", TestCategory: "Cardiac", IsOptional: true},
			},
		},
	} {
		if err := seedPackage(ctx, db, seed); err != nil {
			log.Warn().Err(err).Str("package", seed.pkg.Name).Msg("failed to create health package")
		}
	}

	// 5. A demo patient
	email := "demo.patient@example.com"
	patient := entities.Patient{FirstName: "Demo", LastName: "Patient", Email: &email, Phone: "+919811111111", Gender: "other"}
	if err := patientRepo.Create(ctx, &patient); err != nil {
		log.Warn().Err(err).Msg("failed to create demo patient")
	}

	log.Info().Msg("seeding completed")
}

func seedPackage(ctx context.Context, db *goqu.Database, seed packageSeed) error {
	p := seed.pkg
	query, args, err := db.Insert("health_packages").Rows(goqu.Record{
		"name":                      p.Name,
		"description":               p.Description,
		"price":                     p.Price,
		"age_group":                 p.AgeGroup,
		"fasting_required":          p.FastingRequired,
		"home_collection_available": p.HomeCollectionAvailable,
		"lab_visit_required":        p.LabVisitRequired,
		"report_delivery_days":      p.ReportDeliveryDays,
		"is_active":                 true,
	}).Returning("id").ToSQL()
	if err != nil {
		return err
	}

	var packageID int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&packageID); err != nil {
		return err
	}

	for _, t := range seed.tests {
		query, args, err := db.Insert("health_package_tests").Rows(goqu.Record{
			"package_id":       packageID,
			"test_name":        t.TestName,
			"test_category":    t.TestCategory,
			"test_description": t.TestDescription,
			"is_optional":      t.IsOptional,
		}).ToSQL()
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}
