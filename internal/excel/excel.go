// Package excel converts between contact lists and the xlsx layout
// used for bulk import and export: one header row followed by one row
// per contact with the columns id, name, phone, email, wechat, qq,
// address, company, bookmarked, created time and updated time.
package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gitlab.com/qianyu.zhou/addressbook-service/internal/model"
)

// SheetName is the name of the worksheet holding the contacts.
const SheetName = "联系人"

// timeLayout is the cell format for the timestamp columns.
const timeLayout = "2006-01-02 15:04:05"

var headers = []interface{}{
	"ID", "姓名", "电话", "邮箱", "微信", "QQ", "地址", "公司", "收藏", "创建时间", "更新时间",
}

// Column indices within a data row.
const (
	colId = iota
	colName
	colPhone
	colEmail
	colWechat
	colQq
	colAddress
	colCompany
	colBookmarked
	colCreatedTime
	colUpdatedTime
)

// Encode renders the contacts as an xlsx workbook.
func Encode(contacts []model.Contact) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}

	for i, contact := range contacts {
		bookmarked := "否"
		if contact.Bookmarked {
			bookmarked = "是"
		}
		row := []interface{}{
			strconv.FormatInt(contact.Id, 10),
			model.StringValue(contact.Name),
			model.StringValue(contact.Phone),
			model.StringValue(contact.Email),
			model.StringValue(contact.Wechat),
			model.StringValue(contact.Qq),
			model.StringValue(contact.Address),
			model.StringValue(contact.Company),
			bookmarked,
			formatTime(contact.CreatedTime),
			formatTime(contact.UpdatedTime),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses an xlsx workbook back into contacts. The header row
// and fully blank rows are skipped, the id column is ignored (ids are
// assigned by the store), and a row is kept only when both name and
// phone are non-empty. A missing bookmark cell defaults to false.
func Decode(r io.Reader) ([]model.Contact, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	contacts := []model.Contact{}
	for i, row := range rows {
		if i == 0 || isRowEmpty(row) {
			continue
		}
		name := cellValue(row, colName)
		phone := cellValue(row, colPhone)
		if name == "" || phone == "" {
			continue
		}
		contact := model.Contact{
			Name:       &name,
			Phone:      &phone,
			Email:      model.StringPtr(cellValue(row, colEmail)),
			Wechat:     model.StringPtr(cellValue(row, colWechat)),
			Qq:         model.StringPtr(cellValue(row, colQq)),
			Address:    model.StringPtr(cellValue(row, colAddress)),
			Company:    model.StringPtr(cellValue(row, colCompany)),
			Bookmarked: cellValue(row, colBookmarked) == "是",
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func cellValue(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
