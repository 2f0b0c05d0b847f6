package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costplanning/services"
)

type lineItemDef struct {
	moduleCode     string
	categoryCode   string
	sortNo         int
	itemName       string
	specification  string
	unit           string
	quantity       float64
	unitPrice      float64
	taxRate        float64
	brand          string
	contractorName string
	workType       string
	remarks        string
}

// defaultTemplateSchema is the schema attached to the seeded template. Field
// keys use template vocabulary on purpose so the alias table is exercised on
// every page load.
const defaultTemplateSchema = `{
  "modules": [
    {
      "code": "MATERIAL",
      "name": "物资",
      "categories": ["DEVICE", "BULK"],
      "columns": [
        {"field": "name", "label": "物资名称", "type": "string", "editable": true, "required": true, "width": 200},
        {"field": "spec", "label": "规格型号", "type": "string", "editable": true, "width": 150},
        {"field": "brand", "label": "品牌", "type": "string", "editable": true, "width": 120},
        {"field": "unit", "label": "单位", "type": "string", "editable": true, "width": 70},
        {"field": "qty", "label": "数量", "type": "number", "editable": true, "width": 90, "precision": 4},
        {"field": "price_tax", "label": "含税单价", "type": "number", "editable": true, "width": 110, "precision": 6},
        {"field": "tax_rate", "label": "税率%", "type": "number", "editable": true, "width": 70, "precision": 2},
        {"field": "amount_tax", "label": "含税合价", "type": "number", "width": 120, "precision": 2},
        {"field": "tax_amount", "label": "税额", "type": "number", "width": 110, "precision": 2},
        {"field": "amount_no_tax", "label": "不含税金额", "type": "number", "width": 120, "precision": 2},
        {"field": "remark", "label": "备注", "type": "string", "editable": true, "width": 180}
      ]
    },
    {
      "code": "SUBCONTRACT",
      "name": "分包",
      "columns": [
        {"field": "name", "label": "分包内容", "type": "string", "editable": true, "required": true, "width": 200},
        {"field": "contractor", "label": "分包单位", "type": "string", "editable": true, "width": 160},
        {"field": "work_type", "label": "作业类型", "type": "string", "editable": true, "width": 120},
        {"field": "unit", "label": "单位", "type": "string", "editable": true, "width": 70},
        {"field": "qty", "label": "数量", "type": "number", "editable": true, "width": 90, "precision": 4},
        {"field": "price_tax", "label": "含税单价", "type": "number", "editable": true, "width": 110, "precision": 6},
        {"field": "tax_rate", "label": "税率%", "type": "number", "editable": true, "width": 70, "precision": 2},
        {"field": "amount_tax", "label": "含税合价", "type": "number", "width": 120, "precision": 2},
        {"field": "tax_amount", "label": "税额", "type": "number", "width": 110, "precision": 2},
        {"field": "amount_no_tax", "label": "不含税金额", "type": "number", "width": 120, "precision": 2},
        {"field": "remark", "label": "备注", "type": "string", "editable": true, "width": 180}
      ]
    },
    {
      "code": "EXPENSE",
      "name": "费用",
      "columns": [
        {"field": "name", "label": "费用项", "type": "string", "editable": true, "required": true, "width": 200},
        {"field": "unit", "label": "单位", "type": "string", "editable": true, "width": 70},
        {"field": "qty", "label": "数量", "type": "number", "editable": true, "width": 90, "precision": 4},
        {"field": "price_tax", "label": "含税单价", "type": "number", "editable": true, "width": 110, "precision": 6},
        {"field": "tax_rate", "label": "税率%", "type": "number", "editable": true, "width": 70, "precision": 2},
        {"field": "amount_tax", "label": "含税合价", "type": "number", "width": 120, "precision": 2},
        {"field": "tax_amount", "label": "税额", "type": "number", "width": 110, "precision": 2},
        {"field": "amount_no_tax", "label": "不含税金额", "type": "number", "width": 120, "precision": 2},
        {"field": "remark", "label": "备注", "type": "string", "editable": true, "width": 180}
      ]
    }
  ]
}`

// Seed populates the collections with a demo project, a standard template
// and a draft cost version carrying line items in all three modules. It is
// safe to call on every startup because it returns early if any project
// records already exist.
func Seed(app *pocketbase.PocketBase) error {
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("seed: could not find projects collection: %w", err)
	}
	existing, err := app.FindAllRecords(projectsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query projects: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: projects collection is empty – inserting seed data …")

	templatesCol, err := app.FindCollectionByNameOrId("templates")
	if err != nil {
		return fmt.Errorf("seed: could not find templates collection: %w", err)
	}
	versionsCol, err := app.FindCollectionByNameOrId("cost_versions")
	if err != nil {
		return fmt.Errorf("seed: could not find cost_versions collection: %w", err)
	}
	lineItemsCol, err := app.FindCollectionByNameOrId("line_items")
	if err != nil {
		return fmt.Errorf("seed: could not find line_items collection: %w", err)
	}

	// ── template ─────────────────────────────────────────────────────
	tmpl := core.NewRecord(templatesCol)
	tmpl.Set("name", "机电安装标准模板")
	tmpl.Set("schema_json", defaultTemplateSchema)
	if err := app.Save(tmpl); err != nil {
		return fmt.Errorf("seed: save template: %w", err)
	}

	// ── project ──────────────────────────────────────────────────────
	project := core.NewRecord(projectsCol)
	project.Set("name", "滨江数据中心机电安装工程")
	project.Set("code", "BJ-DC-2026-01")
	project.Set("status", "active")
	if err := app.Save(project); err != nil {
		return fmt.Errorf("seed: save project: %w", err)
	}

	// ── draft version ────────────────────────────────────────────────
	version := core.NewRecord(versionsCol)
	version.Set("project", project.Id)
	version.Set("template", tmpl.Id)
	version.Set("version_no", "V1")
	version.Set("status", services.VersionStatusDraft)
	version.Set("remarks", "初版计划成本")
	if err := app.Save(version); err != nil {
		return fmt.Errorf("seed: save cost version: %w", err)
	}

	// ── line items ───────────────────────────────────────────────────
	items := []lineItemDef{
		{moduleCode: "MATERIAL", categoryCode: "DEVICE", sortNo: 1, itemName: "低压配电柜", specification: "GGD-0.4kV", unit: "台", quantity: 12, unitPrice: 68000, taxRate: 13, brand: "正泰", remarks: "含出厂检验"},
		{moduleCode: "MATERIAL", categoryCode: "DEVICE", sortNo: 2, itemName: "精密空调", specification: "25kW 下送风", unit: "台", quantity: 8, unitPrice: 96000, taxRate: 13, brand: "维谛"},
		{moduleCode: "MATERIAL", categoryCode: "BULK", sortNo: 3, itemName: "电力电缆", specification: "YJV-4x185+1x95", unit: "m", quantity: 2600, unitPrice: 385.5, taxRate: 13, brand: "远东"},
		{moduleCode: "MATERIAL", categoryCode: "BULK", sortNo: 4, itemName: "镀锌桥架", specification: "300x100", unit: "m", quantity: 1800, unitPrice: 86, taxRate: 13},
		{moduleCode: "SUBCONTRACT", sortNo: 1, itemName: "桥架及电缆敷设", contractorName: "华城机电安装公司", workType: "安装", unit: "项", quantity: 1, unitPrice: 560000, taxRate: 9},
		{moduleCode: "SUBCONTRACT", sortNo: 2, itemName: "空调管道保温", contractorName: "恒温保温工程部", workType: "保温", unit: "m²", quantity: 3200, unitPrice: 78, taxRate: 9},
		{moduleCode: "EXPENSE", sortNo: 1, itemName: "现场管理费", unit: "月", quantity: 10, unitPrice: 45000, taxRate: 6},
		{moduleCode: "EXPENSE", sortNo: 2, itemName: "检测试验费", unit: "项", quantity: 1, unitPrice: 120000, taxRate: 6, remarks: "第三方检测"},
	}
	for _, d := range items {
		item := services.Recompute(services.LineItem{
			Quantity:  d.quantity,
			UnitPrice: d.unitPrice,
			TaxRate:   d.taxRate,
		})

		r := core.NewRecord(lineItemsCol)
		r.Set("version", version.Id)
		r.Set("module_code", d.moduleCode)
		r.Set("category_code", d.categoryCode)
		r.Set("sort_no", d.sortNo)
		r.Set("item_name", d.itemName)
		r.Set("specification", d.specification)
		r.Set("unit", d.unit)
		r.Set("quantity", d.quantity)
		r.Set("unit_price", d.unitPrice)
		r.Set("tax_rate", d.taxRate)
		r.Set("total_amount", item.TotalAmount)
		r.Set("tax_amount", item.TaxAmount)
		r.Set("pre_tax_amount", item.PreTaxAmount)
		r.Set("brand", d.brand)
		r.Set("contractor_name", d.contractorName)
		r.Set("work_type", d.workType)
		r.Set("remarks", d.remarks)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save line item %q: %w", d.itemName, err)
		}
	}

	if err := services.RecalculateIndicators(app, version.Id); err != nil {
		return fmt.Errorf("seed: recalculate indicators: %w", err)
	}

	log.Println("seed: all seed data inserted successfully (1 project, 1 template, 1 draft version, 8 line items)")
	return nil
}
