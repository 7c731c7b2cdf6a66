package statement

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"

	"phonepe-analyzer/internal/model"
)

// PDFParser extracts transactions from a PhonePe statement PDF. Text
// extraction runs through pdftotext, which also handles password
// protected statements via -upw.
type PDFParser struct {
	Pdftotext string // binary name or absolute path; empty means "pdftotext"
}

const pdfDateLayout = "Jan 02, 2006"

// A PhonePe statement line looks like:
//
//	Jun 01, 2023 Paid to SWIGGY LIMITED DEBIT INR 249.00
//	Jun 03, 2023 Received from RAHUL K CREDIT INR 1,200.00
var (
	txnLine     = regexp.MustCompile(`^[A-Za-z]{3} \d{2}, \d{4} .*(?i:(debit|credit)) INR \d`)
	dateRe      = regexp.MustCompile(`^([A-Za-z]{3} \d{2}, \d{4})`)
	amountRe    = regexp.MustCompile(`(?i)INR ([\d,]+(?:\.\d{1,2})?)`)
	directionRe = regexp.MustCompile(`(?i)\b(debit|credit)\b`)
	paidToRe    = regexp.MustCompile(`(?i)paid to\s+(.*?)\s*\b(?i:debit|credit)\b`)
	receivedRe  = regexp.MustCompile(`(?i)received from\s+(.*?)\s*\b(?i:debit|credit)\b`)
)

// Parse extracts the statement text and recovers transactions from
// lines matching the PhonePe layout. Boilerplate (headers, page
// numbers, summaries) never matches and is ignored silently; matched
// lines that fail field extraction are skipped and counted.
func (p *PDFParser) Parse(ctx context.Context, path, password string) (Result, error) {
	bin := p.Pdftotext
	if bin == "" {
		bin = "pdftotext"
	}

	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, path, "-")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(strings.ToLower(msg), "incorrect password") {
			return Result{}, errors.New("incorrect PDF password")
		}
		return Result{}, errors.Wrapf(err, "pdftotext failed: %s", msg)
	}

	return parsePhonePeText(string(out))
}

// parsePhonePeText applies the PhonePe line pattern to extracted text.
// Split out from Parse so it can be exercised without a PDF on disk.
func parsePhonePeText(text string) (Result, error) {
	var res Result

	s := bufio.NewScanner(strings.NewReader(text))
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if !txnLine.MatchString(line) {
			continue
		}

		t, ok := parsePhonePeLine(line)
		if !ok {
			res.skip(line)
			continue
		}
		res.Txns = append(res.Txns, t)
	}
	if err := s.Err(); err != nil {
		return res, errors.Wrap(err, "scanning statement text")
	}

	if len(res.Txns) == 0 {
		return res, ErrNoTransactions
	}
	model.SortByDate(res.Txns)
	return res, nil
}

func parsePhonePeLine(line string) (model.Transaction, bool) {
	var zero model.Transaction

	m := dateRe.FindStringSubmatch(line)
	if m == nil {
		return zero, false
	}
	tm, err := time.Parse(pdfDateLayout, m[1])
	if err != nil {
		return zero, false
	}
	date := time.Date(tm.Year(), tm.Month(), tm.Day(), 0, 0, 0, 0, time.UTC)

	dir := directionRe.FindString(line)
	typ, ok := parseType(dir)
	if !ok {
		return zero, false
	}

	am := amountRe.FindStringSubmatch(line)
	if am == nil {
		return zero, false
	}
	amount, ok := parseAmount(am[1])
	if !ok {
		return zero, false
	}

	name := "Unknown"
	if m := paidToRe.FindStringSubmatch(line); m != nil {
		name = strings.TrimSpace(m[1])
	} else if m := receivedRe.FindStringSubmatch(line); m != nil {
		name = strings.TrimSpace(m[1])
	}
	if name == "" {
		name = "Unknown"
	}

	return model.NewTransaction(date, name, amount, typ), true
}
