// Package fixtures builds the article/category schema used across package tests.
package fixtures

import (
	"github.com/satishbabariya/multilingual-go/languages"
	"github.com/satishbabariya/multilingual-go/schema"
)

// Languages returns a fresh registry with en (1), pl (2) and zh-cn (3).
func Languages() *languages.Registry {
	return languages.MustNewRegistry(
		languages.Definition{Code: "en", Name: "English"},
		languages.Definition{Code: "pl", Name: "Polish"},
		languages.Definition{Code: "zh-cn", Name: "Simplified Chinese"},
	)
}

// Articles returns a registry with User, Category, SpecialCategory (inherits
// Category), Tag, Article and ModelWithCustomPK.
func Articles() *schema.Registry {
	reg := schema.NewRegistry(Languages())
	reg.MustRegister(
		&schema.Model{
			Name:  "User",
			Table: "auth_user",
			Fields: []*schema.Field{
				{Name: "username", Type: "string"},
			},
		},
		&schema.Model{
			Name:  "Category",
			Table: "articles_category",
			Fields: []*schema.Field{
				{Name: "creator", Kind: schema.ForeignKey, To: "User", Nullable: true, RelatedName: "categories"},
				{Name: "created", Type: "datetime", Nullable: true},
				{Name: "parent", Kind: schema.ForeignKey, To: "self", Nullable: true, RelatedName: "children"},
			},
			Translation: &schema.Translation{
				Table: "articles_category_translation",
				Fields: []*schema.Field{
					{Name: "name", Type: "string"},
					{Name: "description", Type: "text", Nullable: true},
				},
			},
		},
		&schema.Model{
			Name:    "SpecialCategory",
			Table:   "articles_specialcategory",
			Parents: []string{"Category"},
			Fields: []*schema.Field{
				{Name: "priority", Type: "int"},
			},
		},
		&schema.Model{
			Name:  "Tag",
			Table: "articles_tag",
			Fields: []*schema.Field{
				{Name: "label", Type: "string"},
			},
		},
		&schema.Model{
			Name:  "Article",
			Table: "articles_article",
			Fields: []*schema.Field{
				{Name: "creator", Kind: schema.ForeignKey, To: "User", Nullable: true, RelatedName: "articles"},
				{Name: "created", Type: "datetime", Nullable: true},
				{Name: "category", Kind: schema.ForeignKey, To: "Category", RelatedName: "articles"},
				{Name: "tags", Kind: schema.ManyToMany, To: "Tag", RelatedName: "articles"},
			},
			Translation: &schema.Translation{
				Table: "articles_article_translation",
				Fields: []*schema.Field{
					{Name: "title", Type: "string"},
					{Name: "contents", Type: "text", Nullable: true},
				},
			},
		},
		&schema.Model{
			Name:  "ModelWithCustomPK",
			Table: "articles_modelwithcustompk",
			Fields: []*schema.Field{
				{Name: "custompk", Type: "string", PrimaryKey: true},
			},
			Translation: &schema.Translation{
				Table: "articles_modelwithcustompk_translation",
				Fields: []*schema.Field{
					{Name: "title", Type: "string"},
				},
			},
		},
	)
	return reg
}

// SQLiteDDL creates the tables of Articles in SQLite.
var SQLiteDDL = []string{
	`CREATE TABLE auth_user (id INTEGER PRIMARY KEY AUTOINCREMENT, username TEXT NOT NULL)`,
	`CREATE TABLE articles_category (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		creator_id INTEGER NULL REFERENCES auth_user(id),
		created DATETIME NULL,
		parent_id INTEGER NULL REFERENCES articles_category(id)
	)`,
	`CREATE TABLE articles_category_translation (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NULL,
		language_id INTEGER NOT NULL,
		master_id INTEGER NOT NULL REFERENCES articles_category(id),
		UNIQUE (language_id, master_id)
	)`,
	`CREATE TABLE articles_specialcategory (
		category_ptr_id INTEGER PRIMARY KEY REFERENCES articles_category(id),
		priority INTEGER NOT NULL
	)`,
	`CREATE TABLE articles_tag (id INTEGER PRIMARY KEY AUTOINCREMENT, label TEXT NOT NULL)`,
	`CREATE TABLE articles_article (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		creator_id INTEGER NULL REFERENCES auth_user(id),
		created DATETIME NULL,
		category_id INTEGER NOT NULL REFERENCES articles_category(id)
	)`,
	`CREATE TABLE articles_article_tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		article_id INTEGER NOT NULL REFERENCES articles_article(id),
		tag_id INTEGER NOT NULL REFERENCES articles_tag(id)
	)`,
	`CREATE TABLE articles_article_translation (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		contents TEXT NULL,
		language_id INTEGER NOT NULL,
		master_id INTEGER NOT NULL REFERENCES articles_article(id),
		UNIQUE (language_id, master_id)
	)`,
	`CREATE TABLE articles_modelwithcustompk (custompk TEXT PRIMARY KEY)`,
	`CREATE TABLE articles_modelwithcustompk_translation (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		language_id INTEGER NOT NULL,
		master_id TEXT NOT NULL REFERENCES articles_modelwithcustompk(custompk),
		UNIQUE (language_id, master_id)
	)`,
}
