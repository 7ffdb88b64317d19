package postgres

// tables lists the tables of schema, children first.
var tables = []string{
	`"product_translation"`,
	`"product"`,
	`"tax_area_rule"`,
	`"tax"`,
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS "tax" (
		"id" uuid PRIMARY KEY,
		"tax_rate" numeric(10, 2) NOT NULL,
		"name" varchar(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS "tax_area_rule" (
		"id" uuid PRIMARY KEY,
		"tax_id" uuid NOT NULL,
		"country_id" uuid NULL,
		"customer_group_id" uuid NULL,
		"tax_rate" numeric(10, 2) NOT NULL,
		"name" varchar(255) NOT NULL,
		"active" boolean NOT NULL DEFAULT false
	)`,
	`CREATE TABLE IF NOT EXISTS "product" (
		"id" uuid PRIMARY KEY,
		"tax_id" uuid NOT NULL,
		"ean" varchar(255) NULL,
		"stock" integer NULL,
		"price" numeric(10, 2) NOT NULL,
		"active" boolean NOT NULL DEFAULT false,
		"tags" jsonb NULL,
		"created_at" timestamp NULL,
		"updated_at" timestamp NULL
	)`,
	`CREATE TABLE IF NOT EXISTS "product_translation" (
		"product_id" uuid NOT NULL,
		"language_id" uuid NOT NULL,
		"name" varchar(255) NULL,
		"description" text NULL,
		PRIMARY KEY ("product_id", "language_id")
	)`,
}
