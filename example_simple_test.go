package monetdbe_test

import (
	"fmt"
	"log"

	"github.com/monetdbe/monetdbe-go"
)

// Example_simpleSession opens an in-memory database, inserts a row with a
// prepared statement and reads it back one row at a time.
func Example_simpleSession() {
	s, err := monetdbe.Open(":memory:")
	if err != nil {
		log.Fatalf("failed to open database: %s", err)
	}
	defer s.Close()

	if _, err := s.Exec("CREATE TABLE users (name STRING, age INTEGER)"); err != nil {
		log.Fatalf("failed to create users table: %s", err)
	}

	stmt, err := s.Prepare("INSERT INTO users VALUES (?, ?)")
	if err != nil {
		log.Fatalf("failed to prepare insert: %s", err)
	}
	defer stmt.Close()
	if err := stmt.Bind(0, "Marc"); err != nil {
		log.Fatal(err)
	}
	if err := stmt.Bind(1, 30); err != nil {
		log.Fatal(err)
	}
	if _, _, err := stmt.Execute(false); err != nil {
		log.Fatalf("failed to insert: %s", err)
	}

	err = s.WithResult("SELECT name, age FROM users", func(r *monetdbe.Result) error {
		for i := 0; i < r.Rows(); i++ {
			row, err := r.Row(i, nil)
			if err != nil {
				return err
			}
			fmt.Printf("%s is %d\n", row[0], row[1])
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
}

// Example_bulkAppend loads whole columns with one append call and reads the
// table back column by column.
func Example_bulkAppend() {
	s, err := monetdbe.Open(":memory:")
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	if _, err := s.Exec("CREATE TABLE readings (sensor INTEGER, value DOUBLE)"); err != nil {
		log.Fatal(err)
	}
	err = s.Append("", "readings", map[string]monetdbe.BulkColumn{
		"sensor": {Data: []int64{1, 2, 3}},
		"value":  {Data: []float64{0.5, 0, 1.5}, Valid: []bool{true, false, true}},
	})
	if err != nil {
		log.Fatal(err)
	}

	err = s.WithResult("SELECT * FROM readings", func(r *monetdbe.Result) error {
		vectors, err := r.ExtractAll()
		if err != nil {
			return err
		}
		fmt.Println(vectors["sensor"].Data, vectors["value"].Valid)
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
}
