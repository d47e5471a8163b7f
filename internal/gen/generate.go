package gen

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

var header = []string{
	"_time", "OS_User", "Exec_User", "DB_Type", "DB_Name",
	"Program", "Module", "Src_Host", "Src_IP",
	"Accessed_Obj", "Accessed_Obj_Owner", "Statement", "MS_Context",
}

type row struct {
	time time.Time
	rec  []string
}

func pick(list []string) string {
	return list[gofakeit.Number(0, len(list)-1)]
}

// fillObj substitutes the accessed object into a statement template.
// Templates without a placeholder pass through unchanged.
func fillObj(tmpl, obj string) string {
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, obj)
	}
	return tmpl
}

// riskTier assigns a tier by the configured distribution.
func riskTier(cfg GenConfig) string {
	r := gofakeit.Float64Range(0, 1)
	switch {
	case r < cfg.HighPct:
		return "high"
	case r < cfg.HighPct+cfg.MediumPct:
		return "medium"
	default:
		return "low"
	}
}

// genTimestamp biases access time by risk tier: high-risk rows skew to
// off-hours and weekends, low-risk rows stay in business hours.
func genTimestamp(base time.Time, spanDays int, tier string) time.Time {
	day := base.AddDate(0, 0, gofakeit.Number(0, spanDays))

	var hour int
	switch tier {
	case "high":
		if gofakeit.Float64Range(0, 1) < 0.6 {
			if gofakeit.Float64Range(0, 1) < 0.3 {
				hour = gofakeit.Number(0, 5)
			} else {
				offHours := []int{19, 20, 21, 22, 23, 6, 7}
				hour = offHours[gofakeit.Number(0, len(offHours)-1)]
			}
		} else {
			hour = gofakeit.Number(9, 17)
		}
		if gofakeit.Float64Range(0, 1) < 0.4 {
			// push onto the next Saturday
			day = day.AddDate(0, 0, (int(time.Saturday)-int(day.Weekday())+7)%7)
		}
	case "medium":
		if gofakeit.Float64Range(0, 1) < 0.3 {
			edges := []int{8, 18, 19}
			hour = edges[gofakeit.Number(0, len(edges)-1)]
		} else {
			hour = gofakeit.Number(9, 17)
		}
	default:
		hour = gofakeit.Number(9, 17)
	}

	return time.Date(day.Year(), day.Month(), day.Day(),
		hour, gofakeit.Number(0, 59), gofakeit.Number(0, 59), 0, time.UTC)
}

// Generate writes a synthetic audit-log CSV per the config. Generation is
// deterministic for a given seed.
func Generate(configPath string) error {
	cfg, err := readGenConfig(configPath)
	if err != nil {
		return fmt.Errorf("load gen config: %w", err)
	}

	gofakeit.Seed(cfg.Seed)

	base := time.Now().UTC().Truncate(24 * time.Hour)
	if cfg.StartDate != "" {
		base, err = time.Parse("2006-01-02", cfg.StartDate)
		if err != nil {
			return fmt.Errorf("parse startDate: %w", err)
		}
	}

	users := make([]string, cfg.Users)
	ips := make([]string, cfg.Users)
	for i := range users {
		users[i] = strings.ToLower(gofakeit.FirstName() + "." + gofakeit.LastName())
		ips[i] = gofakeit.IPv4Address()
	}

	log.Printf("[INFO] Generating %d audit rows (seed=%d, users=%d, span=%dd)",
		cfg.Rows, cfg.Seed, cfg.Users, cfg.SpanDays)

	rows := make([]row, 0, cfg.Rows)
	for i := 0; i < cfg.Rows; i++ {
		tier := riskTier(cfg)

		var obj, stmt, context, program string
		switch tier {
		case "high":
			obj = pick(HighRiskObjects)
			stmt = fillObj(pick(HighRiskSQL), obj)
			context = pick(HighRiskContexts)
			program = pick(HighRiskPrograms)
		case "medium":
			obj = pick(MediumRiskObjects)
			stmt = fillObj(pick(MediumRiskSQL), obj)
			context = pick(MediumRiskContexts)
			program = pick(MediumRiskPrograms)
		default:
			obj = pick(LowRiskObjects)
			stmt = fillObj(pick(LowRiskSQL), obj)
			context = pick(LowRiskContexts)
			program = pick(LowRiskPrograms)
		}

		user := pick(users)
		execUser := user
		if gofakeit.Float64Range(0, 1) < 0.1 {
			execUser = pick(users)
		}

		ts := genTimestamp(base, cfg.SpanDays, tier)
		rows = append(rows, row{
			time: ts,
			rec: []string{
				ts.Format("2006-01-02 15:04:05"),
				user,
				execUser,
				"MSSQL",
				pick(Databases),
				program,
				pick(Modules),
				pick(Hosts),
				pick(ips),
				obj,
				"dbo",
				stmt,
				context,
			},
		})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].time.Before(rows[j].time) })

	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(r.rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	log.Printf("[INFO] Generation complete: %d rows written to %s", len(rows), cfg.Output)
	return nil
}
