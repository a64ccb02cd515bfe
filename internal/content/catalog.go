package content

// Offering は提供サービス1件を表す。
type Offering struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Details     []string `json:"details"`
}

// FAQItem はよくある質問1件を表す。
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQCategory はカテゴリごとのよくある質問。
type FAQCategory struct {
	Category string    `json:"category"`
	Items    []FAQItem `json:"items"`
}

var offerings = []Offering{
	{
		Slug:        "repair",
		Title:       "Réparation Informatique",
		Description: "Diagnostic et réparation rapide de vos ordinateurs et périphériques",
		Details: []string{
			"Diagnostic et réparation d'ordinateurs et laptops",
			"Récupération de données",
			"Réparation d'écrans et composants",
			"Remplacement de batteries",
			"Nettoyage de virus et logiciels malveillants",
		},
	},
	{
		Slug:        "maintenance",
		Title:       "Maintenance",
		Description: "Entretien régulier pour garder vos équipements performants",
		Details: []string{
			"Entretien préventif du matériel",
			"Mise à jour des logiciels et systèmes d'exploitation",
			"Optimisation des performances",
			"Nettoyage physique des équipements",
			"Maintenance planifiée régulière",
		},
	},
	{
		Slug:        "network",
		Title:       "Réseaux",
		Description: "Installation et dépannage de vos réseaux filaires et sans fil",
		Details: []string{
			"Installation et configuration de réseaux WiFi",
			"Configuration de routeurs et modems",
			"Dépannage de connexions réseau",
			"Installation de réseaux filaires",
			"Solutions VPN pour le travail à distance",
		},
	},
	{
		Slug:        "security",
		Title:       "Sécurité Informatique",
		Description: "Protection de vos données et de vos équipements",
		Details: []string{
			"Installation d'antivirus et pare-feu",
			"Protection des données personnelles",
			"Sécurisation des réseaux WiFi",
			"Audits de sécurité",
			"Récupération après piratage",
		},
	},
	{
		Slug:        "storage",
		Title:       "Stockage & Sauvegarde",
		Description: "Solutions de stockage et systèmes de sauvegarde fiables pour vos données",
		Details: []string{
			"Configuration de solutions de stockage en réseau (NAS)",
			"Mise en place de sauvegardes automatisées",
			"Récupération de données perdues",
			"Solutions de stockage cloud",
			"Stratégies de sauvegarde personnalisées",
		},
	},
	{
		Slug:        "office",
		Title:       "Support Bureautique",
		Description: "Assistance pour tous vos logiciels de bureautique et problèmes informatiques quotidiens",
		Details: []string{
			"Aide à l'utilisation des suites bureautiques",
			"Configuration d'emails et agendas",
			"Installation et configuration d'imprimantes",
			"Formation sur les outils numériques",
			"Support à distance",
		},
	},
	{
		Slug:        "upgrade",
		Title:       "Mise à Niveau Matérielle",
		Description: "Améliorez les performances de vos équipements existants",
		Details: []string{
			"Augmentation de la mémoire RAM",
			"Installation de disques SSD",
			"Remplacement de composants défectueux",
			"Mise à niveau de processeurs",
			"Conseils d'achat personnalisés",
		},
	},
	{
		Slug:        "web",
		Title:       "Services Web",
		Description: "Solutions web pour votre présence en ligne",
		Details: []string{
			"Création de sites web professionnels",
			"Maintenance de sites existants",
			"Configuration d'emails professionnels",
			"Référencement (SEO) basique",
			"Hébergement web sécurisé",
		},
	},
}

var faqs = []FAQCategory{
	{
		Category: "Services Généraux",
		Items: []FAQItem{
			{
				Question: "Quels types de services informatiques proposez-vous?",
				Answer:   "Nous proposons une gamme complète de services informatiques incluant la réparation d'ordinateurs et de périphériques, la maintenance préventive, la configuration de réseaux, la sécurité informatique, la récupération de données, et plus encore. Consultez notre page Services pour plus de détails.",
			},
			{
				Question: "Intervenez-vous à domicile ou en entreprise?",
				Answer:   "Oui, nous offrons des services d'intervention à domicile et en entreprise dans toute la région de Cotonou et ses environs. Nous pouvons également fournir du support à distance pour certains problèmes qui ne nécessitent pas une présence physique.",
			},
			{
				Question: "Quels sont vos délais d'intervention?",
				Answer:   "Pour les demandes urgentes, nous nous efforçons d'intervenir dans les 24 à 48 heures. Pour les services planifiés comme la maintenance, nous fixons un rendez-vous à votre convenance. La durée de l'intervention dépend de la complexité du problème.",
			},
		},
	},
	{
		Category: "Réparations & Maintenance",
		Items: []FAQItem{
			{
				Question: "Mon ordinateur est lent, pouvez-vous l'accélérer?",
				Answer:   "Oui, nous pouvons optimiser les performances de votre ordinateur en nettoyant les logiciels inutiles, en supprimant les virus et logiciels malveillants, en défragmentant le disque dur, ou en recommandant des mises à niveau matérielles si nécessaire (ajout de RAM, remplacement par un SSD, etc.).",
			},
			{
				Question: "Pouvez-vous récupérer mes données perdues?",
				Answer:   "Dans de nombreux cas, oui. Nous disposons d'outils spécialisés pour la récupération de données sur différents types de supports (disques durs, SSD, clés USB, cartes mémoire). Le taux de réussite dépend de la nature du problème et de l'état du support de stockage.",
			},
			{
				Question: "Proposez-vous des contrats de maintenance pour les entreprises?",
				Answer:   "Oui, nous offrons des contrats de maintenance adaptés aux besoins spécifiques des entreprises. Ces contrats peuvent inclure des visites régulières, une surveillance proactive, des mises à jour planifiées et un support prioritaire en cas de problème.",
			},
		},
	},
	{
		Category: "Réseaux & Sécurité",
		Items: []FAQItem{
			{
				Question: "Comment puis-je sécuriser mon réseau WiFi?",
				Answer:   "Pour sécuriser votre réseau WiFi, nous recommandons d'utiliser un mot de passe fort, d'activer le chiffrement WPA3 (ou au minimum WPA2), de modifier le nom de réseau par défaut (SSID), de désactiver la diffusion du SSID, de mettre à jour régulièrement le firmware de votre routeur, et d'activer le pare-feu. Nous pouvons configurer tout cela pour vous.",
			},
			{
				Question: "Mon WiFi ne couvre pas toute ma maison/mon bureau, que faire?",
				Answer:   "Plusieurs solutions existent: repositionner votre routeur, installer des répéteurs WiFi, des adaptateurs CPL avec WiFi, ou mettre en place un système mesh. Nous pouvons évaluer votre espace et recommander la meilleure solution pour une couverture optimale.",
			},
			{
				Question: "Comment protéger mon ordinateur contre les virus?",
				Answer:   "Une protection efficace contre les virus comprend l'installation d'un bon antivirus, des mises à jour régulières de votre système d'exploitation et de vos logiciels, l'utilisation d'un pare-feu, et l'adoption de bonnes pratiques de navigation (méfiance vis-à-vis des pièces jointes et des liens suspects). Nous pouvons mettre en place une solution de sécurité complète adaptée à vos besoins.",
			},
		},
	},
	{
		Category: "Tarifs & Paiements",
		Items: []FAQItem{
			{
				Question: "Comment sont calculés vos tarifs?",
				Answer:   "Nos tarifs sont basés sur la nature du service, sa complexité et sa durée. Pour les interventions standard, nous proposons des forfaits. Pour les projets plus complexes, nous établissons un devis personnalisé après évaluation. Les déplacements sont facturés selon la distance.",
			},
			{
				Question: "Quels moyens de paiement acceptez-vous?",
				Answer:   "Nous acceptons les paiements en espèces, par virement bancaire, par Mobile Money, et par carte bancaire pour certains services. Des facilités de paiement peuvent être proposées pour les projets importants ou les contrats de maintenance.",
			},
			{
				Question: "Proposez-vous un service de garantie?",
				Answer:   "Oui, toutes nos réparations sont garanties pendant une période de 30 jours. Les pièces neuves installées bénéficient de la garantie du fabricant. Nos contrats de maintenance incluent également une garantie sur les services fournis.",
			},
		},
	},
}
