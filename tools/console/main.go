package main

import (
	"encoding/json"
	"fmt"
	"log"
	"reflect"

	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/Kapsk2801/Lost-Found/pkg/stormsql"
	"github.com/Kapsk2801/Lost-Found/pkg/structs"
	"github.com/asdine/storm/v3"
	"github.com/pkg/errors"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
)

// go run tools/console/main.go lostfound.db " SELECT ID, ItemTitle FROM claims WHERE ClaimStatus = 'pending' ORDER BY CreatedAt DESC LIMIT 10;  "

var tables = map[string]model.Model{
	"users":         &model.User{},
	"sessions":      &model.Session{},
	"items":         &model.Item{},
	"claims":        &model.Claim{},
	"notifications": &model.Notification{},
	"comments":      &model.Comment{},
	"messages":      &model.Message{},
}

func main() {
	var verbose bool

	c := &cobra.Command{
		Use:   "console",
		Short: "SQL console for lostfound database",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			//
			//
			sc, err := stormsql.ParseSelect(args[1])
			if err != nil {
				return err
			}

			table, ok := tables[sc.Tablename]
			if !ok {
				return errors.Errorf("unknown tablename: %s", sc.Tablename)
			}

			//
			//
			fmt.Println("Opening", args[0])
			db, err := storm.Open(args[0], database.StormCodec)
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			//
			// Prepare request
			//

			query := db.Select(sc.Matcher)
			if sc.Skip > 0 {
				query.Skip(sc.Skip)
			}
			if sc.Limit > 0 {
				query.Limit(sc.Limit)
			}
			if len(sc.OrderBy) > 0 {
				query.OrderBy(sc.OrderBy...)
				if sc.OrderByReversed {
					query.Reverse()
				}
			}

			// Execute

			if sc.Count {
				n, err := query.Count(table)
				if err != nil {
					return errors.Wrap(err, "could not perform query")
				}
				fmt.Println("Count:", n)
				return nil
			}

			return list(sc, query, table, verbose)
		},
	}
	c.Flags().BoolVarP(&verbose, "verbose", "v", false, "Dump records with their Go types")

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func list(sc *stormsql.SelectClause, query storm.Query, table model.Model, verbose bool) error {
	// *[]*model.X
	records := reflect.New(reflect.SliceOf(reflect.TypeOf(table)))

	err := query.Find(records.Interface())
	if err != nil && err != storm.ErrNotFound {
		return errors.Wrap(err, "could not perform query")
	}

	rows := make([]any, 0, records.Elem().Len())
	for i := 0; i < records.Elem().Len(); i++ {
		record := records.Elem().Index(i).Interface()
		if len(sc.SelectedFields) == 0 {
			rows = append(rows, record)
			continue
		}

		fields, err := structs.Pick(record, sc.SelectedFields...)
		if err != nil {
			return err
		}
		rows = append(rows, fields)
	}

	if verbose {
		fmt.Println(litter.Sdump(rows))
		return nil
	}

	d, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not render records")
	}
	fmt.Println(string(d))
	return nil
}
