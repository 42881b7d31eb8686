package main

import (
	"bufio"
	"flag"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"gitlab.com/qianyu.zhou/addressbook-service/internal/config"
	"gitlab.com/qianyu.zhou/addressbook-service/internal/store"
	"gitlab.com/qianyu.zhou/addressbook-service/pkg/logger"
)

// Usage example on the command line:
// > DBHOST=localhost:3306 DBUSER=dirk DBPWD=secret go run main.go -file=../../scripts/database.sql
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.Init(cfg.ServiceName+"-migration", cfg.Environment)
	defer log.Sync()

	filePtr := flag.String("file", "database.sql", "the sql file to execute")
	flag.Parse()

	sqlDB, err := store.Open(cfg.DSN())
	if err != nil {
		log.Fatalw("cannot open database", "error", err)
	}
	db := sqlx.NewDb(sqlDB, "mysql")
	defer db.Close()

	readFile, err := os.Open(*filePtr) // nosemgrep
	if err != nil {
		log.Fatalw("cannot open sql file", "file", *filePtr, "error", err)
	}
	defer readFile.Close()

	// Execute the script statement by statement; a statement ends with
	// a semicolon.
	fileScanner := bufio.NewScanner(readFile)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	for fileScanner.Scan() {
		line := fileScanner.Text()
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			db.MustExec(builder.String())
			builder = strings.Builder{}
		}
	}
	log.Infow("migration finished", "file", *filePtr)
}
