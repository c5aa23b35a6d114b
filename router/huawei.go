/*
huawei.go - SMS and monitoring operations over the router API

PURPOSE:
  The actual API calls the balance workflow uses: send an SMS, read the
  inbox, delete a consumed message, and fetch monitoring snapshots for
  the /stats passthrough.

INBOX SEMANTICS:
  The device reports every stored message with a read flag (Smstat).
  ListInbox filters to unread messages and orders them newest first,
  because the balance notification we are waiting for is always the
  most recent arrival. An empty inbox is an empty slice, not an error.

MONITORING PASSTHROUGH:
  Traffic/signal/device-info responses are flat XML element lists whose
  fields vary by firmware. They are decoded into string maps and served
  to clients untouched.

SEE ALSO:
  - session.go: doGet/doPost plumbing
  - balance/poller.go: The consumer of ListInbox
*/
package router

import (
	"context"
	"encoding/xml"
	"io"
	"sort"
	"strings"
	"time"
)

// deviceTimeLayout is the timestamp format the router uses for SMS dates.
const deviceTimeLayout = "2006-01-02 15:04:05"

// =============================================================================
// SMS OPERATIONS
// =============================================================================

type smsSendRequest struct {
	XMLName  xml.Name `xml:"request"`
	Index    int      `xml:"Index"`
	Phones   phones   `xml:"Phones"`
	Sca      string   `xml:"Sca"`
	Content  string   `xml:"Content"`
	Length   int      `xml:"Length"`
	Reserved int      `xml:"Reserved"`
	Date     string   `xml:"Date"`
}

type phones struct {
	Phone []string `xml:"Phone"`
}

type smsListRequest struct {
	XMLName         xml.Name `xml:"request"`
	PageIndex       int      `xml:"PageIndex"`
	ReadCount       int      `xml:"ReadCount"`
	BoxType         int      `xml:"BoxType"`
	SortType        int      `xml:"SortType"`
	Ascending       int      `xml:"Ascending"`
	UnreadPreferred int      `xml:"UnreadPreferred"`
}

type smsListResponse struct {
	XMLName  xml.Name     `xml:"response"`
	Count    int          `xml:"Count"`
	Messages []smsMessage `xml:"Messages>Message"`
}

type smsMessage struct {
	Smstat  string `xml:"Smstat"`
	Index   string `xml:"Index"`
	Phone   string `xml:"Phone"`
	Content string `xml:"Content"`
	Date    string `xml:"Date"`
}

type smsDeleteRequest struct {
	XMLName xml.Name `xml:"request"`
	Index   string   `xml:"Index"`
}

// SendSMS sends body to every number in phones.
func (c *HuaweiClient) SendSMS(ctx context.Context, numbers []string, body string) (string, error) {
	payload := smsSendRequest{
		Index:    -1,
		Phones:   phones{Phone: numbers},
		Content:  body,
		Length:   len(body),
		Reserved: 1,
		Date:     time.Now().Format(deviceTimeLayout),
	}
	resp, err := c.doPost(ctx, "/api/sms/send-sms", payload)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// ListInbox returns unread messages, newest first.
func (c *HuaweiClient) ListInbox(ctx context.Context, page int, box BoxType, count int) ([]Message, error) {
	payload := smsListRequest{
		PageIndex: page,
		ReadCount: count,
		BoxType:   int(box),
	}
	resp, err := c.doPost(ctx, "/api/sms/sms-list", payload)
	if err != nil {
		return nil, err
	}

	var list smsListResponse
	if err := xml.Unmarshal(resp, &list); err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(list.Messages))
	for _, m := range list.Messages {
		if m.Smstat != "0" {
			continue
		}
		date, err := time.Parse(deviceTimeLayout, m.Date)
		if err != nil {
			date = time.Time{}
		}
		messages = append(messages, Message{
			Index:   m.Index,
			Phone:   m.Phone,
			Content: m.Content,
			Date:    date,
		})
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Date.After(messages[j].Date)
	})
	return messages, nil
}

// DeleteSMS removes a message from the device by index.
func (c *HuaweiClient) DeleteSMS(ctx context.Context, index string) error {
	_, err := c.doPost(ctx, "/api/sms/delete-sms", smsDeleteRequest{Index: index})
	return err
}

// =============================================================================
// MONITORING OPERATIONS
// =============================================================================

// TrafficStats returns the device traffic counters.
func (c *HuaweiClient) TrafficStats(ctx context.Context) (map[string]string, error) {
	return c.getFlat(ctx, "/api/monitoring/traffic-statistics")
}

// Signal returns the current signal readings.
func (c *HuaweiClient) Signal(ctx context.Context) (map[string]string, error) {
	return c.getFlat(ctx, "/api/device/signal")
}

// DeviceInfo returns static device information.
func (c *HuaweiClient) DeviceInfo(ctx context.Context) (map[string]string, error) {
	return c.getFlat(ctx, "/api/device/information")
}

func (c *HuaweiClient) getFlat(ctx context.Context, path string) (map[string]string, error) {
	resp, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	return flattenResponse(resp)
}

// =============================================================================
// XML HELPERS
// =============================================================================

// flattenResponse decodes a flat <response><Key>value</Key>...</response>
// document into a string map.
func flattenResponse(data []byte) (map[string]string, error) {
	out := make(map[string]string)
	dec := xml.NewDecoder(strings.NewReader(string(data)))

	depth := 0
	var field string
	var value strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				field = t.Name.Local
				value.Reset()
			}
		case xml.CharData:
			if depth == 2 {
				value.Write(t)
			}
		case xml.EndElement:
			if depth == 2 && field != "" {
				out[field] = value.String()
				field = ""
			}
			depth--
		}
	}
	return out, nil
}

// responseText extracts the inner text of a <response> envelope ("OK" for
// most write operations).
func responseText(data []byte) string {
	var resp struct {
		XMLName xml.Name `xml:"response"`
		Text    string   `xml:",chardata"`
	}
	if err := xml.Unmarshal(data, &resp); err != nil {
		return ""
	}
	return strings.TrimSpace(resp.Text)
}
