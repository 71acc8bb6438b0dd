package lists

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	POST(path string, body any) error
	PUT(path string, body any) error
	DELETE(path string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Save(name, value string)
	Lookup(name string) (string, bool)
}

// RegisterSteps registers to-do list and item step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &listSteps{tc: tc}

	// Lists
	ctx.Step(`^I create a list named "([^"]*)"$`, steps.createList)
	ctx.Step(`^I fetch the list$`, steps.fetchList)
	ctx.Step(`^I delete the list$`, steps.deleteList)
	ctx.Step(`^the list should be named "([^"]*)"$`, steps.listShouldBeNamed)
	ctx.Step(`^the list should have (\d+) items?$`, steps.listShouldHaveItems)
	ctx.Step(`^the summaries should include the list with (\d+) items?$`, steps.summariesShouldInclude)
	ctx.Step(`^the summaries should not include the list$`, steps.summariesShouldNotInclude)

	// Items
	ctx.Step(`^I add an item labelled "([^"]*)" to the list$`, steps.addItem)
	ctx.Step(`^I mark item "([^"]*)" as (checked|unchecked)$`, steps.markItem)
	ctx.Step(`^I delete item "([^"]*)"$`, steps.deleteItem)
	ctx.Step(`^item "([^"]*)" should be (checked|unchecked)$`, steps.itemShouldBe)
}

type listSteps struct {
	tc TestContext
}

type itemBody struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

type listBody struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Items []itemBody `json:"items"`
}

type summaryBody struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ItemCount int    `json:"item_count"`
}

func (s *listSteps) createList(ctx context.Context, name string) error {
	if err := s.tc.POST("/api/lists", map[string]string{"name": name}); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return nil
	}
	return s.saveField("id", "list")
}

func (s *listSteps) fetchList(ctx context.Context) error {
	listID, err := s.listID()
	if err != nil {
		return err
	}
	return s.tc.GET("/api/lists/"+listID, nil)
}

func (s *listSteps) deleteList(ctx context.Context) error {
	listID, err := s.listID()
	if err != nil {
		return err
	}
	return s.tc.DELETE("/api/lists/" + listID)
}

func (s *listSteps) listShouldBeNamed(ctx context.Context, name string) error {
	list, err := s.lastList()
	if err != nil {
		return err
	}
	if list.Name != name {
		return fmt.Errorf("expected list named %q, got %q", name, list.Name)
	}
	return nil
}

func (s *listSteps) listShouldHaveItems(ctx context.Context, n int) error {
	list, err := s.lastList()
	if err != nil {
		return err
	}
	if len(list.Items) != n {
		return fmt.Errorf("expected %d items, got %d", n, len(list.Items))
	}
	return nil
}

func (s *listSteps) summariesShouldInclude(ctx context.Context, count int) error {
	summary, found, err := s.findSummary()
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("list not in summaries: %s", s.tc.GetLastResponseBody())
	}
	if summary.ItemCount != count {
		return fmt.Errorf("expected item_count %d, got %d", count, summary.ItemCount)
	}
	return nil
}

func (s *listSteps) summariesShouldNotInclude(ctx context.Context) error {
	_, found, err := s.findSummary()
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("deleted list still in summaries")
	}
	return nil
}

func (s *listSteps) addItem(ctx context.Context, label string) error {
	listID, err := s.listID()
	if err != nil {
		return err
	}
	if err := s.tc.POST("/api/lists/"+listID+"/items", map[string]string{"label": label}); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return nil
	}
	return s.saveField("id", itemKey(label))
}

func (s *listSteps) markItem(ctx context.Context, label, state string) error {
	listID, err := s.listID()
	if err != nil {
		return err
	}
	itemID, ok := s.tc.Lookup(itemKey(label))
	if !ok {
		return fmt.Errorf("no item labelled %q was created", label)
	}
	return s.tc.PUT("/api/lists/"+listID+"/checked_state", map[string]any{
		"item_id":       itemID,
		"checked_state": state == "checked",
	})
}

func (s *listSteps) deleteItem(ctx context.Context, label string) error {
	listID, err := s.listID()
	if err != nil {
		return err
	}
	itemID, ok := s.tc.Lookup(itemKey(label))
	if !ok {
		return fmt.Errorf("no item labelled %q was created", label)
	}
	return s.tc.DELETE("/api/lists/" + listID + "/items/" + itemID)
}

func (s *listSteps) itemShouldBe(ctx context.Context, label, state string) error {
	list, err := s.lastList()
	if err != nil {
		return err
	}
	for _, item := range list.Items {
		if item.Label == label {
			if item.Checked != (state == "checked") {
				return fmt.Errorf("expected item %q to be %s", label, state)
			}
			return nil
		}
	}
	return fmt.Errorf("item %q not in list", label)
}

func (s *listSteps) findSummary() (summaryBody, bool, error) {
	listID, err := s.listID()
	if err != nil {
		return summaryBody{}, false, err
	}
	if err := s.tc.GET("/api/lists", nil); err != nil {
		return summaryBody{}, false, err
	}
	var summaries []summaryBody
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &summaries); err != nil {
		return summaryBody{}, false, fmt.Errorf("decode summaries: %w", err)
	}
	for _, summary := range summaries {
		if summary.ID == listID {
			return summary, true, nil
		}
	}
	return summaryBody{}, false, nil
}

func (s *listSteps) lastList() (listBody, error) {
	var list listBody
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &list); err != nil {
		return listBody{}, fmt.Errorf("decode list: %w; body: %s", err, s.tc.GetLastResponseBody())
	}
	return list, nil
}

func (s *listSteps) listID() (string, error) {
	listID, ok := s.tc.Lookup("list")
	if !ok {
		return "", fmt.Errorf("no list was created in this scenario")
	}
	return listID, nil
}

func (s *listSteps) saveField(field, name string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	str, ok := v.(string)
	if !ok {
		return fmt.Errorf("field %q is not a string", field)
	}
	s.tc.Save(name, str)
	return nil
}

func itemKey(label string) string {
	return "item:" + label
}
